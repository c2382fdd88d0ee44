package code

import (
	"fmt"

	"ticket-mailer/internal/tickets/class"
)

// SequenceWidth is the minimum number of digits of the sequence segment.
const SequenceWidth = 5

// Generate builds "{eventID}-{typeCode}-{index}" with index zero-padded to
// SequenceWidth digits. Larger indices keep their natural width.
func Generate(eventID, typeName string, index int) string {
	return fmt.Sprintf("%s-%s-%0*d", eventID, TypeCode(typeName), SequenceWidth, index)
}

// TypeCode returns the 3-digit type segment, "000" for unknown names.
func TypeCode(typeName string) string {
	return class.Parse(typeName).Code()
}
