package notifications

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"skybridge/pkg/kafka"
)

const confirmationText = `Your booking has been confirmed!

BOOKING DETAILS
Booking reference: {{.BookingRef}}
Check-in: {{date .CheckInDate}}
Check-out: {{date .CheckOutDate}}
Number of nights: {{.Nights}}
Guests: {{.Adults}} adult(s){{if gt .Children 0}}, {{.Children}} child(ren){{end}}

PAYMENT SUMMARY
Total amount paid: {{money .TotalAmount}}

Please bring a valid ID for check-in and quote your booking reference.

SkyBridge Travels
This is an automated message. Please do not reply to this email.
`

const confirmationHTML = `<html><body style="font-family:sans-serif">
<h2>Your booking has been confirmed!</h2>
<table>
<tr><td>Booking reference</td><td><strong>{{.BookingRef}}</strong></td></tr>
<tr><td>Check-in</td><td>{{date .CheckInDate}}</td></tr>
<tr><td>Check-out</td><td>{{date .CheckOutDate}}</td></tr>
<tr><td>Nights</td><td>{{.Nights}}</td></tr>
<tr><td>Guests</td><td>{{.Adults}} adult(s){{if gt .Children 0}}, {{.Children}} child(ren){{end}}</td></tr>
<tr><td>Total paid</td><td>{{money .TotalAmount}}</td></tr>
</table>
<p>Please bring a valid ID for check-in and quote your booking reference.</p>
<p style="color:#888">SkyBridge Travels. This is an automated message.</p>
</body></html>`

var funcs = map[string]any{
	"date":  func(t time.Time) string { return t.UTC().Format("January 2, 2006") },
	"money": func(v float64) string { return fmt.Sprintf("PHP %.2f", v) },
}

var (
	confirmationTextTmpl = texttemplate.Must(texttemplate.New("confirmation.txt").Funcs(funcs).Parse(confirmationText))
	confirmationHTMLTmpl = htmltemplate.Must(htmltemplate.New("confirmation.html").Funcs(funcs).Parse(confirmationHTML))
)

// ConfirmationEmail renders the message sent when a booking's payment settles.
func ConfirmationEmail(event kafka.BookingEvent) (Email, error) {
	var text, html bytes.Buffer
	if err := confirmationTextTmpl.Execute(&text, event); err != nil {
		return Email{}, fmt.Errorf("failed to render confirmation text: %w", err)
	}
	if err := confirmationHTMLTmpl.Execute(&html, event); err != nil {
		return Email{}, fmt.Errorf("failed to render confirmation html: %w", err)
	}

	return Email{
		To:      event.GuestEmail,
		Subject: fmt.Sprintf("Booking Confirmed - %s", event.BookingRef),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

const propertySubmittedText = `Dear Hotel Owner,

Thank you for submitting "{{.PropertyName}}" to SkyBridge Travels.

Your property is now under review. Our team checks every listing before it
appears in search, which usually takes 1-2 business days. We will e-mail you
as soon as a decision is made.

Property ID: {{.PropertyID}}

SkyBridge Travels
This is an automated message. Please do not reply to this email.
`

const propertyApprovedText = `Dear Hotel Owner,

Good news! "{{.PropertyName}}" has been approved and is now live on
SkyBridge Travels.

Guests can find your property in search and book its room types right away.
Keep your room types and rates up to date so guests always see accurate
availability.

Property ID: {{.PropertyID}}

SkyBridge Travels
This is an automated message. Please do not reply to this email.
`

const propertyRejectedText = `Dear Hotel Owner,

Thank you for submitting "{{.PropertyName}}". After review, we are unable to
publish it at this time.

Reason: {{if .RejectionReason}}{{.RejectionReason}}{{else}}No specific reason provided{{end}}

You can update the listing and it will be sent back for review automatically.

Property ID: {{.PropertyID}}

SkyBridge Travels
This is an automated message. Please do not reply to this email.
`

type propertyEmail struct {
	tmpl    *texttemplate.Template
	subject func(kafka.PropertyEvent) string
}

var propertyEmails = map[string]propertyEmail{
	kafka.EventPropertySubmitted: {
		tmpl:    texttemplate.Must(texttemplate.New("property_submitted.txt").Parse(propertySubmittedText)),
		subject: func(kafka.PropertyEvent) string { return "Property Submitted - Under Review" },
	},
	kafka.EventPropertyApproved: {
		tmpl:    texttemplate.Must(texttemplate.New("property_approved.txt").Parse(propertyApprovedText)),
		subject: func(e kafka.PropertyEvent) string { return "Property Approved - " + e.PropertyName },
	},
	kafka.EventPropertyRejected: {
		tmpl:    texttemplate.Must(texttemplate.New("property_rejected.txt").Parse(propertyRejectedText)),
		subject: func(e kafka.PropertyEvent) string { return "Property Submission Feedback - " + e.PropertyName },
	},
}

// PropertyEmail renders the message sent to an owner when their listing is
// submitted or reviewed. It reports false for event types owners are not told
// about.
func PropertyEmail(eventType string, event kafka.PropertyEvent) (Email, bool, error) {
	pe, ok := propertyEmails[eventType]
	if !ok {
		return Email{}, false, nil
	}

	var text bytes.Buffer
	if err := pe.tmpl.Execute(&text, event); err != nil {
		return Email{}, true, fmt.Errorf("failed to render %s email: %w", eventType, err)
	}

	return Email{
		To:      event.OwnerEmail,
		Subject: pe.subject(event),
		Text:    text.String(),
	}, true, nil
}
