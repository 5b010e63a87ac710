package dto

type NoticeRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Priority string `json:"priority,omitempty"`
	Author   string `json:"author"`
}

type ComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type ComplaintStatusRequest struct {
	Status string `json:"status"`
}

// CreatedResponse mirrors the create endpoints' {message, id} body.
type CreatedResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type EventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Venue       string `json:"venue"`
	Organizer   string `json:"organizer"`
}

type ClubRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Coordinator string `json:"coordinator"`
}

type AttendanceRequest struct {
	Subject string `json:"subject"`
	Date    string `json:"date"`
	Status  string `json:"status"`
}

type FeedbackRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Rating   int    `json:"rating"`
}
