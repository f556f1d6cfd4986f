package email

import (
	"bytes"
	"fmt"
	"html/template"
)

var bookingConfirmationTmpl = template.Must(template.New("booking_confirmation").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; background-color: #1a1a1a; color: #ffffff; margin: 0; padding: 20px; }
    .container { max-width: 600px; margin: 0 auto; background-color: #2a2a2a; border-radius: 10px; padding: 30px; }
    .header { text-align: center; margin-bottom: 30px; }
    .logo { color: #00CED1; font-size: 28px; font-weight: bold; }
    .booking-details { background-color: #3a3a3a; padding: 20px; border-radius: 8px; margin: 20px 0; }
    .detail-row { margin: 10px 0; }
    .label { color: #00CED1; font-weight: bold; }
    .footer { text-align: center; margin-top: 30px; color: #888; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="logo">WAVE HOUSE</div>
      <h2>Booking Confirmation</h2>
    </div>
    <div class="booking-details">
      <div class="detail-row"><span class="label">Reference:</span> {{.Reference}}</div>
      <div class="detail-row"><span class="label">Client:</span> {{.ClientName}}</div>
      <div class="detail-row"><span class="label">Email:</span> {{.ClientEmail}}</div>
      <div class="detail-row"><span class="label">Phone:</span> {{.ClientPhone}}</div>
      <div class="detail-row"><span class="label">Service:</span> {{.Service}}</div>
      <div class="detail-row"><span class="label">Date:</span> {{.Date}}</div>
      <div class="detail-row"><span class="label">Time:</span> {{.StartTime}} - {{.EndTime}}</div>
      <div class="detail-row"><span class="label">Status:</span> {{.Status}}</div>
      {{- if .EstimatedPrice}}
      <div class="detail-row"><span class="label">Estimated price:</span> ${{.EstimatedPrice}}</div>
      {{- end}}
      {{- if .Notes}}
      <div class="detail-row"><span class="label">Notes:</span> {{.Notes}}</div>
      {{- end}}
    </div>
    <div class="footer">
      <p>Thank you for choosing Wave House Recording Studio!</p>
      <p>Contact us: {{.ContactEmail}}</p>
    </div>
  </div>
</body>
</html>
`))

// RenderBookingConfirmation renders the HTML sent to both the studio and the client.
func RenderBookingConfirmation(data BookingEmailData) (string, error) {
	var buf bytes.Buffer
	if err := bookingConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render booking confirmation: %w", err)
	}
	return buf.String(), nil
}
