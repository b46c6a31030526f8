package rules

import (
	"sort"
	"strconv"

	"github.com/gokaycavdar/go-ipreputation/pkg/models"
)

// DataCenterGroup is the group DataCenterPreset files its rules under.
const DataCenterGroup = "datacenter"

// dataCenterASNs maps well-known cloud and hosting ASNs to their provider.
//
// Limitations:
//   - Residential VPNs (NordVPN, ExpressVPN, ...) are not covered
//   - Some legitimate users browse from cloud desktops or VDI
var dataCenterASNs = map[uint]string{
	// Major Cloud Providers
	16509:  "Amazon.com (AWS)",
	14618:  "Amazon.com (AWS)",
	15169:  "Google Cloud",
	396982: "Google Cloud",
	8075:   "Microsoft Azure",
	14061:  "DigitalOcean",

	// European Hosting Providers
	24940: "Hetzner Online GmbH",
	16276: "OVH SAS",
	12876: "Online S.A.S. (Scaleway)",
	49981: "WorldStream",

	// VPN/Proxy Infrastructure Providers
	20473: "Choopa, LLC (Vultr)",
	60068: "Datacamp Limited (CDN77)",
	9009:  "M247 Europe",
	20940: "Akamai Technologies",
	13335: "Cloudflare",

	// Other Hosting Providers
	63949: "Linode",
	46606: "Unified Layer",
	36352: "ColoCrossing",
}

// DataCenterProvider returns the provider name for a known data center ASN.
func DataCenterProvider(asn uint) (string, bool) {
	name, ok := dataCenterASNs[asn]
	return name, ok
}

// DataCenterPreset adds one asn rule per known data center ASN, in ascending
// ASN order, to both the master list and the DataCenterGroup group. The same
// rule pointers live in both places, so ApplyToGroup(DataCenterGroup, ...)
// retunes the preset everywhere.
func (rs *RuleSet) DataCenterPreset(points int) *RuleSet {
	asns := make([]uint, 0, len(dataCenterASNs))
	for asn := range dataCenterASNs {
		asns = append(asns, asn)
	}
	sort.Slice(asns, func(i, j int) bool { return asns[i] < asns[j] })

	batch := make([]*models.Rule, 0, len(asns))
	for _, asn := range asns {
		r, err := models.NewValueRule("asn", strconv.FormatUint(uint64(asn), 10), points)
		if err != nil {
			rs.fail("datacenter_preset", err)
			return rs
		}
		batch = append(batch, r)
	}

	for _, r := range batch {
		rs.rules = append(rs.rules, r)
		if err := rs.AddRuleToGroup(DataCenterGroup, r); err != nil {
			rs.fail("datacenter_preset", err)
			return rs
		}
	}
	return rs
}
