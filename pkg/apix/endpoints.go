package apix

import (
	"sort"

	"github.com/apixtools/cisco-apix/pkg/client"
)

// API base URLs.
const (
	serviceBaseURL = "https://apix.cisco.com/cs/api/v1"
	eoxURL         = "https://apix.cisco.com/supporttools/eox/rest/5/EOXByProductID/{index}/{items}"
	sn2infoURL     = "https://apix.cisco.com/sn2info/v2/coverage/summary/serial_numbers/{items}"
)

// Endpoint names accepted by Client.RunQuery.
const (
	EndpointHardwareInventory        = "hardware-inventory"
	EndpointNetworkElements          = "network-elements"
	EndpointSoftwareInventory        = "software-inventory"
	EndpointCustomerDetails          = "customer-details"
	EndpointInventoryGroups          = "inventory-groups"
	EndpointContractDetails          = "contract-details"
	EndpointContractCoverage         = "contract-coverage"
	EndpointContractNotCovered       = "contract-not-covered"
	EndpointFieldNotices             = "field-notices"
	EndpointFieldNoticeBulletins     = "field-notice-bulletins"
	EndpointHardwareEOL              = "hardware-eol"
	EndpointHardwareEOLBulletins     = "hardware-eol-bulletins"
	EndpointSecurityAdvisories       = "security-advisories"
	EndpointSecurityAdvBulletins     = "security-advisory-bulletins"
	EndpointSoftwareEOL              = "software-eol"
	EndpointSoftwareEOLBulletins     = "software-eol-bulletins"
	EndpointEoXByProductID           = "eox-by-product-id"
	EndpointCoverageSummaryBySerials = "sn2info-coverage-summary"
)

// serviceSpec builds a spec for one of the generic service endpoints. They
// all return records under "data", page via the "page" query parameter, and
// share the shorter timeout.
func serviceSpec(name, path string, requiresCustomerID bool) client.QuerySpec {
	return client.QuerySpec{
		Name:               name,
		URL:                serviceBaseURL + path,
		RequiresCustomerID: requiresCustomerID,
		Pagination:         client.PaginationPageParam,
		Timeout:            client.ServiceEndpointTimeout,
	}
}

// registry maps endpoint names to their query specs. The bulletin endpoints
// and customer-details are account-wide lookups and take no customerId.
var registry = map[string]client.QuerySpec{
	EndpointHardwareInventory:    serviceSpec(EndpointHardwareInventory, "/inventory/hardware", true),
	EndpointNetworkElements:      serviceSpec(EndpointNetworkElements, "/inventory/network-elements", true),
	EndpointSoftwareInventory:    serviceSpec(EndpointSoftwareInventory, "/inventory/software", true),
	EndpointCustomerDetails:      serviceSpec(EndpointCustomerDetails, "/customer-info/customer-details", false),
	EndpointInventoryGroups:      serviceSpec(EndpointInventoryGroups, "/customer-info/inventory-groups", true),
	EndpointContractDetails:      serviceSpec(EndpointContractDetails, "/contracts/contract-details", true),
	EndpointContractCoverage:     serviceSpec(EndpointContractCoverage, "/contracts/coverage", true),
	EndpointContractNotCovered:   serviceSpec(EndpointContractNotCovered, "/contracts/not-covered", true),
	EndpointFieldNotices:         serviceSpec(EndpointFieldNotices, "/product-alerts/field-notices", true),
	EndpointFieldNoticeBulletins: serviceSpec(EndpointFieldNoticeBulletins, "/product-alerts/field-notice-bulletins", false),
	EndpointHardwareEOL:          serviceSpec(EndpointHardwareEOL, "/product-alerts/hardware-eol", true),
	EndpointHardwareEOLBulletins: serviceSpec(EndpointHardwareEOLBulletins, "/product-alerts/hardware-eol-bulletins", false),
	EndpointSecurityAdvisories:   serviceSpec(EndpointSecurityAdvisories, "/product-alerts/security-advisories", true),
	EndpointSecurityAdvBulletins: serviceSpec(EndpointSecurityAdvBulletins, "/product-alerts/security-advisory-bulletins", false),
	EndpointSoftwareEOL:          serviceSpec(EndpointSoftwareEOL, "/product-alerts/software-eol", true),
	EndpointSoftwareEOLBulletins: serviceSpec(EndpointSoftwareEOLBulletins, "/product-alerts/software-eol-bulletins", false),

	EndpointEoXByProductID: {
		Name:       EndpointEoXByProductID,
		URL:        eoxURL,
		RecordsKey: "EOXRecord",
		Pagination: client.PaginationPathIndex,
		Timeout:    client.SupportEndpointTimeout,
	},
	EndpointCoverageSummaryBySerials: {
		Name:       EndpointCoverageSummaryBySerials,
		URL:        sn2infoURL,
		RecordsKey: "serial_numbers",
		Pagination: client.PaginationNone,
		Timeout:    client.SupportEndpointTimeout,
	},
}

// Lookup returns the spec registered under the given endpoint name.
func Lookup(name string) (client.QuerySpec, bool) {
	spec, ok := registry[name]
	return spec, ok
}

// Endpoints returns all registered endpoint names in sorted order.
func Endpoints() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
