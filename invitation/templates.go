package invitation

const baseStyle = `
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 20px; background-color: #f5f7fa; color: #333; }
        .invitation-container { max-width: 600px; margin: 0 auto; background: white; border-radius: 15px; box-shadow: 0 10px 30px rgba(0,0,0,0.1); overflow: hidden; }
        .header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center; }
        .header h1 { margin: 0 0 10px 0; font-size: 28px; }
        .header .topic { margin: 0 0 8px 0; font-size: 20px; font-weight: 600; }
        .header .brand { margin: 0; opacity: 0.9; }
        .meeting-type-badge { display: inline-block; background: rgba(255,255,255,0.2); padding: 5px 15px; border-radius: 20px; font-size: 12px; margin-bottom: 15px; }
        .content { padding: 30px; }
        .priority-badge { display: inline-block; color: white; padding: 5px 15px; border-radius: 20px; font-size: 12px; font-weight: bold; margin-bottom: 20px; }
        .meeting-details { border-radius: 10px; padding: 20px; margin: 20px 0; }
        .detail-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 15px; }
        .detail-item { display: flex; flex-direction: column; }
        .detail-label { font-weight: bold; color: #666; font-size: 12px; text-transform: uppercase; margin-bottom: 5px; }
        .detail-value { font-size: 16px; color: #333; }
        .section { margin: 25px 0; }
        .section h3 { color: #667eea; border-bottom: 2px solid #667eea; padding-bottom: 5px; margin-bottom: 15px; }
        .meeting-link { display: inline-block; background: #667eea; color: white; padding: 12px 25px; text-decoration: none; border-radius: 25px; font-weight: bold; word-break: break-all; }
        .cta-section { text-align: center; padding: 30px; background: #f8f9fa; }
        .cta-button { display: inline-block; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 15px 30px; text-decoration: none; border-radius: 25px; font-weight: bold; }
        .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; border-top: 1px solid #eee; }
`

const invitationTemplates = `
{{define "head"}}<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Meeting.Topic}} - Meeting Invitation</title>
    <style>{{.Style}}</style>
</head>{{end}}

{{define "header"}}<div class="header">
            <div class="meeting-type-badge">{{.TypeBadge}}</div>
            <h1>📅 Meeting Invitation</h1>
            <p class="topic">{{.Meeting.Topic}}</p>
            <p class="brand">SmartMeetingAI • Professional Meeting Coordination</p>
        </div>{{end}}

{{define "footer"}}<div class="footer">
            <p>Generated by SmartMeetingAI • Professional Meeting Coordination</p>
            <p>Please respond to confirm your attendance</p>
            <p class="generated-on">Generated on {{.GeneratedOn}}</p>
        </div>{{end}}

{{define "fallback"}}<!DOCTYPE html>
<html lang="en">
{{template "head" .}}
<body>
    <div class="invitation-container">
        {{template "header" .}}
        <div class="content">
            <h2>{{.Meeting.Topic}}</h2>
            <div class="priority-badge" data-priority="{{.Priority.Tier}}" style="{{.BadgeStyle}}">{{.Priority.Label}} Priority</div>

            <div class="meeting-details" data-section="details" style="{{.DetailsStyle}}">
                <div class="detail-grid">
                    <div class="detail-item" data-field="date">
                        <span class="detail-label">Date</span>
                        <span class="detail-value">{{.Meeting.DateText}}</span>
                    </div>
                    <div class="detail-item" data-field="time">
                        <span class="detail-label">Time</span>
                        <span class="detail-value">{{.Meeting.TimeText}}</span>
                    </div>
                    <div class="detail-item" data-field="duration">
                        <span class="detail-label">Duration</span>
                        <span class="detail-value">{{.DurationText}}</span>
                    </div>
                    <div class="detail-item" data-field="speaker">
                        <span class="detail-label">Speaker</span>
                        <span class="detail-value">{{.Meeting.Speaker}}</span>
                    </div>
                </div>
            </div>
{{with .Meeting.Location}}
            <div class="section" data-section="location">
                <h3>📍 Location</h3>
                <p>{{.}}</p>
            </div>
{{end}}{{with .Meeting.Link}}
            <div class="section" data-section="link">
                <h3>🔗 Meeting Link</h3>
                <a {{$.LinkAttr}} class="meeting-link">{{.}}</a>
            </div>
{{end}}{{with .AgendaHTML}}
            <div class="section" data-section="agenda">
                <h3>📋 Agenda</h3>
                {{.}}
            </div>
{{end}}{{with .AttendeeLine}}
            <div class="section" data-section="attendees">
                <h3>👥 Attendees</h3>
                <p>{{.}}</p>
            </div>
{{end}}{{with .NotesHTML}}
            <div class="section" data-section="notes">
                <h3>📝 Additional Notes</h3>
                {{.}}
            </div>
{{end}}        </div>

        <div class="cta-section">
            <a href="#" class="cta-button">Confirm Attendance</a>
        </div>

        {{template "footer" .}}
    </div>
</body>
</html>
{{end}}

{{define "wrap"}}<!DOCTYPE html>
<html lang="en">
{{template "head" .}}
<body>
    <div class="invitation-container">
        {{template "header" .}}
        <div class="content" data-section="generated">
{{.Body}}
        </div>

        {{template "footer" .}}
    </div>
</body>
</html>
{{end}}
`

const downloadTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
        .container { max-width: 800px; margin: 0 auto; background: white; padding: 30px; border-radius: 10px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        .header { text-align: center; margin-bottom: 30px; padding-bottom: 20px; border-bottom: 2px solid #667eea; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; text-align: center; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
        </div>
        <div class="content">
{{.Content}}
        </div>
        <div class="footer">
            <p>Generated by SmartMeetingAI</p>
            <p>Date: {{.Date}}</p>
        </div>
    </div>
</body>
</html>
`
