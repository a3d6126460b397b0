package email

import "fmt"

// BookingDetails is the slice of a booking the templates render.
type BookingDetails struct {
	OrderID     string
	Name        string
	Email       string
	Phone       string
	Date        string
	Slot        string
	Amount      float64
	Currency    string
	MeetingLink string
}

// ConfirmationMessage is the patient-facing mail sent once a payment is
// reconciled and the slot is booked.
func ConfirmationMessage(d BookingDetails) Message {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your consultation is confirmed.\n\n"+
			"Date: %s\nTime: %s\nAmount paid: %.2f %s\nOrder ID: %s\n\n"+
			"Join your consultation here: %s\n\n"+
			"Please join a few minutes early and keep your reports handy.\n\n"+
			"Warm regards,\nBE PEACE",
		d.Name, d.Date, d.Slot, d.Amount, d.Currency, d.OrderID, d.MeetingLink)

	html := fmt.Sprintf(
		`<p>Dear %s,</p>
<p>Your consultation is <strong>confirmed</strong>.</p>
<table>
<tr><td>Date</td><td>%s</td></tr>
<tr><td>Time</td><td>%s</td></tr>
<tr><td>Amount paid</td><td>%.2f %s</td></tr>
<tr><td>Order ID</td><td>%s</td></tr>
</table>
<p><a href="%s">Join your consultation</a></p>
<p>Please join a few minutes early and keep your reports handy.</p>
<p>Warm regards,<br>BE PEACE</p>`,
		d.Name, d.Date, d.Slot, d.Amount, d.Currency, d.OrderID, d.MeetingLink)

	return Message{
		To:      d.Email,
		ToName:  d.Name,
		Subject: fmt.Sprintf("Consultation confirmed for %s at %s", d.Date, d.Slot),
		Body:    body,
		HTML:    html,
	}
}

// FailureMessage tells the patient a payment did not go through and the
// slot was released.
func FailureMessage(d BookingDetails) Message {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"We could not confirm your payment for the consultation on %s at %s (order %s). "+
			"The slot has been released.\n\n"+
			"If money was deducted it will be refunded by your bank automatically. "+
			"You can book again at any time.\n\n"+
			"Warm regards,\nBE PEACE",
		d.Name, d.Date, d.Slot, d.OrderID)

	return Message{
		To:      d.Email,
		ToName:  d.Name,
		Subject: "Payment not completed",
		Body:    body,
	}
}

// AdminAlertMessage notifies staff of a newly confirmed booking.
func AdminAlertMessage(adminEmail string, d BookingDetails) Message {
	body := fmt.Sprintf(
		"New confirmed booking\n\n"+
			"Patient: %s\nEmail: %s\nPhone: %s\nDate: %s\nTime: %s\n"+
			"Amount: %.2f %s\nOrder ID: %s\nMeeting: %s\n",
		d.Name, d.Email, d.Phone, d.Date, d.Slot, d.Amount, d.Currency, d.OrderID, d.MeetingLink)

	return Message{
		To:      adminEmail,
		ToName:  "Admin",
		Subject: fmt.Sprintf("New booking: %s on %s at %s", d.Name, d.Date, d.Slot),
		Body:    body,
	}
}
