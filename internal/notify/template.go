package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

var onlineTmpl = template.Must(template.New("doctor_online").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2563eb;">Doctor Available Now!</h2>
  <p>Good news! <strong>Dr. {{.Name}}</strong> ({{.Speciality}}) is now online and available for consultation.</p>
  <p>You can now connect with them through our platform.</p>
  <div style="margin: 20px 0; padding: 15px; background-color: #f3f4f6; border-radius: 8px;">
    <p style="margin: 0;"><strong>Doctor:</strong> Dr. {{.Name}}</p>
    <p style="margin: 0;"><strong>Speciality:</strong> {{.Speciality}}</p>
    <p style="margin: 0;"><strong>Status:</strong> Online</p>
  </div>
  <p>Best regards,<br>MediConnect Team</p>
</div>
`))

func onlineSubject(name string) string { return fmt.Sprintf("Dr. %s is now online!", name) }

func onlineMessage(name string) string { return fmt.Sprintf("Dr. %s is now online", name) }

func onlineHTML(name, speciality string) (string, error) {
	var buf bytes.Buffer
	err := onlineTmpl.Execute(&buf, struct{ Name, Speciality string }{name, speciality})
	return buf.String(), err
}
