package model

import "context"

// MessageTypeJobData tags the message an extractor sends with a scraped posting.
const MessageTypeJobData = "jd_data"

// JobPosting is a transient snapshot of one job listing page.
// Every field is a plain string; a field the page didn't have is "".
type JobPosting struct {
	Company        string
	Role           string
	JobDescription string
}

// IsEmpty reports whether nothing at all was recovered from the page.
func (p JobPosting) IsEmpty() bool {
	return p.Company == "" && p.Role == "" && p.JobDescription == ""
}

// Message is the envelope carried on the bus between a tab and the panel.
type Message struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Company   string `json:"company"`
	Role      string `json:"role"`
	JD        string `json:"jd"`
}

// NewJobDataMessage wraps a posting in a jd_data message.
func NewJobDataMessage(requestID string, p JobPosting) Message {
	return Message{
		Type:      MessageTypeJobData,
		RequestID: requestID,
		Company:   p.Company,
		Role:      p.Role,
		JD:        p.JobDescription,
	}
}

// Posting unpacks the message fields into a JobPosting.
func (m Message) Posting() JobPosting {
	return JobPosting{
		Company:        m.Company,
		Role:           m.Role,
		JobDescription: m.JD,
	}
}

// Tab is one page the host can inject an extractor into.
type Tab struct {
	ID    string
	URL   string
	Title string
}

// Sender delivers a message to whoever listens on the other side of a host.
type Sender interface {
	Send(msg Message) bool
}

// Host is the browser-side integration surface: find the foreground page
// and run the extractor inside it. Inject returns once the extractor has
// been started; the result arrives later through send.
type Host interface {
	ActiveTab(ctx context.Context) (Tab, error)
	Inject(ctx context.Context, tab Tab, requestID string, send Sender) error
}
