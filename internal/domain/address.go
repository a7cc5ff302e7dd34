package domain

import "strings"

type Address struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Name    string `json:"name"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

// Summary renders the address on one line for the confirmation record.
func (a Address) Summary() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Name, a.Line1, a.Line2, a.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	s := strings.Join(parts, ", ")
	if a.Pincode != "" {
		s += " - " + a.Pincode
	}
	return s
}

// DefaultAddresses is the pre-populated address book. The first entry is the default selection.
func DefaultAddresses() []Address {
	return []Address{
		{
			ID:      "addr-home",
			Label:   "Home",
			Name:    "Priya Sharma",
			Line1:   "Flat 402, Lakeview Residency",
			Line2:   "Indiranagar 2nd Stage",
			City:    "Bengaluru",
			State:   "Karnataka",
			Pincode: "560038",
			Phone:   "+91 98450 12345",
		},
		{
			ID:      "addr-work",
			Label:   "Work",
			Name:    "Priya Sharma",
			Line1:   "Tower B, 7th Floor, Embassy Tech Village",
			Line2:   "Outer Ring Road",
			City:    "Bengaluru",
			State:   "Karnataka",
			Pincode: "560103",
			Phone:   "+91 98450 12345",
		},
	}
}
