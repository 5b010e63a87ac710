package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/models/dto"
)

// Me returns the identity the server associates with the held token.
func (c *Client) Me(ctx context.Context) (dto.MeResponse, error) {
	var me dto.MeResponse
	err := c.Call(ctx, http.MethodGet, "/auth/me", nil, &me)
	return me, err
}

// Notices lists the notice board; an empty priority lists everything.
func (c *Client) Notices(ctx context.Context, priority string) ([]models.Notice, error) {
	endpoint := "/notices"
	if priority != "" {
		endpoint += "?priority=" + url.QueryEscape(priority)
	}
	var notices []models.Notice
	err := c.Call(ctx, http.MethodGet, endpoint, nil, &notices)
	return notices, err
}

// FileComplaint submits a complaint and returns its id.
func (c *Client) FileComplaint(ctx context.Context, req dto.ComplaintRequest) (int64, error) {
	var created dto.CreatedResponse
	if err := c.Call(ctx, http.MethodPost, "/complaints", req, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// Events lists the calendar, latest date first; an empty category lists
// everything.
func (c *Client) Events(ctx context.Context, category string) ([]models.Event, error) {
	var events []models.Event
	err := c.Call(ctx, http.MethodGet, withCategory("/events", category), nil, &events)
	return events, err
}

// Clubs lists the club directory.
func (c *Client) Clubs(ctx context.Context, category string) ([]models.Club, error) {
	var clubs []models.Club
	err := c.Call(ctx, http.MethodGet, withCategory("/clubs", category), nil, &clubs)
	return clubs, err
}

func (c *Client) JoinClub(ctx context.Context, id int64) error {
	return c.Call(ctx, http.MethodPost, "/clubs/"+strconv.FormatInt(id, 10)+"/join", nil, nil)
}

func (c *Client) LeaveClub(ctx context.Context, id int64) error {
	return c.Call(ctx, http.MethodPost, "/clubs/"+strconv.FormatInt(id, 10)+"/leave", nil, nil)
}

// MarkAttendance records a class for the signed-in member and returns its id.
func (c *Client) MarkAttendance(ctx context.Context, req dto.AttendanceRequest) (int64, error) {
	var created dto.CreatedResponse
	if err := c.Call(ctx, http.MethodPost, "/attendance", req, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// AttendanceStats returns the signed-in member's per-subject totals.
func (c *Client) AttendanceStats(ctx context.Context) ([]models.SubjectAttendance, error) {
	var stats []models.SubjectAttendance
	err := c.Call(ctx, http.MethodGet, "/attendance/stats", nil, &stats)
	return stats, err
}

// SubmitFeedback posts rated feedback and returns its id.
func (c *Client) SubmitFeedback(ctx context.Context, req dto.FeedbackRequest) (int64, error) {
	var created dto.CreatedResponse
	if err := c.Call(ctx, http.MethodPost, "/feedback", req, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (c *Client) FeedbackSummary(ctx context.Context) (models.FeedbackSummary, error) {
	var summary models.FeedbackSummary
	err := c.Call(ctx, http.MethodGet, "/feedback/stats/summary", nil, &summary)
	return summary, err
}

func withCategory(endpoint, category string) string {
	if category == "" {
		return endpoint
	}
	return endpoint + "?category=" + url.QueryEscape(category)
}
