package email

// EmailRequest is one outgoing message.
type EmailRequest struct {
	To      []string // Recipients
	Cc      []string // Carbon copy (optional)
	Subject string
	Body    string // HTML or plain text
	IsHTML  bool
}

// BookingEmailData is what the booking confirmation template renders.
type BookingEmailData struct {
	Reference      string
	ClientName     string
	ClientEmail    string
	ClientPhone    string
	Service        string
	Date           string
	StartTime      string
	EndTime        string
	Status         string
	Notes          string
	EstimatedPrice string
	ContactEmail   string
}
