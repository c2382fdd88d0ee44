// Package class resolves free-form ticket type names to a canonical ticket
// class. Both the numeric ticket code segment and the ribbon accent color
// are derived from the same table.
package class

import "strings"

// Class is a canonical ticket category.
type Class int

const (
	Unknown Class = iota
	Regular
	RegularPlus
	VIP
)

// Ribbon accent colors printed on the ticket.
const (
	AccentVIP     = "#FFE45E"
	AccentPlus    = "#00D3FF"
	AccentDefault = "#FF3D81"
)

// DefaultLabel is shown on a ticket whose guest carries no type.
const DefaultLabel = "VIP"

var labels = map[string]Class{
	"regular":      Regular,
	"regular plus": RegularPlus,
	"regular +":    RegularPlus,
	"regular+":     RegularPlus,
	"regularplus":  RegularPlus,
	"plus":         RegularPlus,
	"vip":          VIP,
}

// Parse matches name case-insensitively after trimming and collapsing
// inner whitespace. Unrecognised names yield Unknown.
func Parse(name string) Class {
	normalized := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if c, ok := labels[normalized]; ok {
		return c
	}
	return Unknown
}

// Code is the 3-digit segment embedded in ticket codes.
func (c Class) Code() string {
	switch c {
	case Regular:
		return "001"
	case RegularPlus:
		return "002"
	case VIP:
		return "003"
	default:
		return "000"
	}
}

// Accent is the ribbon color for the class; Unknown and Regular share the default.
func (c Class) Accent() string {
	switch c {
	case VIP:
		return AccentVIP
	case RegularPlus:
		return AccentPlus
	default:
		return AccentDefault
	}
}

// String returns the uppercase class name.
func (c Class) String() string {
	switch c {
	case Regular:
		return "REGULAR"
	case RegularPlus:
		return "REGULAR PLUS"
	case VIP:
		return "VIP"
	default:
		return "UNKNOWN"
	}
}

// DisplayLabel is the uppercased type printed on the ticket, VIP when empty.
func DisplayLabel(ticketType string) string {
	if strings.TrimSpace(ticketType) == "" {
		return DefaultLabel
	}
	return strings.ToUpper(ticketType)
}
