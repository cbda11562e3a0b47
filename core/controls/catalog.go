package controls

import (
	"sort"
	"strings"
)

// Framework describes one external compliance standard controls map to.
type Framework struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
}

var frameworkNames = map[string]string{
	"nist_cybersecurity":  "NIST CSF",
	"iso_27001":           "ISO 27001",
	"iso_27002":           "ISO 27002",
	"iso_27017":           "ISO 27017",
	"iso_27018":           "ISO 27018",
	"fedramp_moderate":    "FedRAMP Moderate",
	"fedramp_tailored":    "FedRAMP Tailored",
	"hipaa_security":      "HIPAA Security",
	"soc_2":               "SOC 2",
	"cis_v8":              "CIS v8",
	"bsi_c5":              "BSI C5",
	"mlps":                "MLPS",
	"iso_22301":           "ISO 22301",
	"cyber_essentials_uk": "Cyber Essentials (UK)",
	"ens":                 "ENS",
	"tx_ramp_L1":          "TX-RAMP Level 1",
	"irap":                "IRAP",
	"ismap":               "ISMAP",
	"mas":                 "MAS",
	"kfsi":                "K-FSI",
	"pci_dss_v4":          "PCI DSS v4",
}

// FrameworkKeys lists the indicator columns of the controls spreadsheet, in
// spreadsheet order.
var FrameworkKeys = []string{
	"nist_cybersecurity", "bsi_c5", "cis_v8", "mlps", "iso_22301",
	"cyber_essentials_uk", "ens", "iso_27001", "iso_27002", "iso_27017",
	"iso_27018", "tx_ramp_L1", "fedramp_tailored", "fedramp_moderate",
	"hipaa_security", "irap", "ismap", "mas", "pci_dss_v4", "kfsi", "soc_2",
}

// DisplayName translates a framework key. Unknown keys are upper-cased.
func DisplayName(key string) string {
	if name, ok := frameworkNames[key]; ok {
		return name
	}
	return strings.ToUpper(strings.TrimSpace(key))
}

func IsKnownFramework(key string) bool {
	_, ok := frameworkNames[key]
	return ok
}

// Frameworks returns the catalogue sorted by display name.
func Frameworks() []Framework {
	out := make([]Framework, 0, len(frameworkNames))
	for key, name := range frameworkNames {
		out = append(out, Framework{Key: key, DisplayName: name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName == out[j].DisplayName {
			return out[i].Key < out[j].Key
		}
		return out[i].DisplayName < out[j].DisplayName
	})
	return out
}

// NormalizeFrameworks trims, drops blanks and collapses repeated keys while
// keeping the caller's order.
func NormalizeFrameworks(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := map[string]struct{}{}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
