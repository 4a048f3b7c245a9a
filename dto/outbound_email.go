package dto

// OutboundEmail is what the forward adapter hands to a sending provider.
type OutboundEmail struct {
	From    string
	To      []string
	Subject string
	HTML    string
}
