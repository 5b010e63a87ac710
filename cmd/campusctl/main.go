// Command campusctl signs in to the Campus Connect API and performs a few
// common actions from the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/hongminglow/campus-connect/internal/client"
	"github.com/hongminglow/campus-connect/internal/models"
	"github.com/hongminglow/campus-connect/internal/models/dto"
)

// readPassword is swapped in tests.
var readPassword = term.ReadPassword

const usage = `usage: campusctl <command> [flags]

commands:
  signup    -name NAME -email EMAIL [-role ROLE]
  login     -email EMAIL
  logout
  whoami
  notices   [-priority PRIORITY]
  complain  -title TITLE -description TEXT -category CATEGORY
  events    [-category CATEGORY]
  join      -club ID
  attend    -subject SUBJECT [-date YYYY-MM-DD] [-status STATUS]
  attendance
  feedback  -title TITLE -message TEXT -category CATEGORY -rating 1-5
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	sessionPath, err := sessionFile()
	if err != nil {
		return err
	}
	api := client.New(envOr("CAMPUS_API_URL", client.DefaultBaseURL), nil)
	session, err := client.NewSession(api, client.NewFileStore(sessionPath))
	if err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "signup":
		return signup(ctx, session, rest, out)
	case "login":
		return login(ctx, session, rest, out)
	case "logout":
		if err := session.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Logged out")
		return nil
	case "whoami":
		return whoami(session, out)
	case "notices":
		return notices(ctx, session, rest, out)
	case "complain":
		return complain(ctx, session, rest, out)
	case "events":
		return events(ctx, session, rest, out)
	case "join":
		return joinClub(ctx, session, rest, out)
	case "attend":
		return attend(ctx, session, rest, out)
	case "attendance":
		return attendanceStats(ctx, session, out)
	case "feedback":
		return feedback(ctx, session, rest, out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func signup(ctx context.Context, s *client.Session, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	role := fs.String("role", string(models.DefaultRole), "student, faculty or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	password, err := promptPassword(out)
	if err != nil {
		return err
	}
	user, err := s.Signup(ctx, dto.SignupRequest{Name: *name, Email: *email, Password: password, Role: *role})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Account created. Signed in as %s (%s)\n", user.Name, user.Role)
	return nil
}

func login(ctx context.Context, s *client.Session, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	password, err := promptPassword(out)
	if err != nil {
		return err
	}
	user, err := s.Login(ctx, *email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome, %s\n", user.Name)
	return nil
}

func whoami(s *client.Session, out io.Writer) error {
	user, ok := s.Profile()
	if !ok {
		fmt.Fprintln(out, "Not signed in")
		return nil
	}
	fmt.Fprintf(out, "%s <%s> (%s)\n", user.Name, user.Email, user.Role)
	return nil
}

func notices(ctx context.Context, s *client.Session, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("notices", flag.ContinueOnError)
	priority := fs.String("priority", "", "filter by priority")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list, err := s.API().Notices(ctx, *priority)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No notices")
		return nil
	}
	for _, n := range list {
		fmt.Fprintf(out, "#%d [%s] %s by %s\n    %s\n", n.ID, n.Priority, n.Title, n.Author, n.Content)
	}
	return nil
}

func complain(ctx context.Context, s *client.Session, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("complain", flag.ContinueOnError)
	title := fs.String("title", "", "short summary")
	description := fs.String("description", "", "what happened")
	category := fs.String("category", "", "e.g. facilities, it, academic")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(s); err != nil {
		return err
	}
	id, err := s.API().FileComplaint(ctx, dto.ComplaintRequest{Title: *title, Description: *description, Category: *category})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Complaint #%d submitted\n", id)
	return nil
}

func events(ctx context.Context, s *client.Session, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	category := fs.String("category", "", "filter by category")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list, err := s.API().Events(ctx, *category)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No events")
		return nil
	}
	for _, e := range list {
		fmt.Fprintf(out, "#%d %s %s %s @ %s (%s)\n", e.ID, e.Date, e.Time, e.Title, e.Venue, e.Organizer)
	}
	return nil
}

func joinClub(ctx context.Context, s *client.Session, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("join", flag.ContinueOnError)
	id := fs.Int64("club", 0, "club id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(s); err != nil {
		return err
	}
	if err := s.API().JoinClub(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Joined club #%d\n", *id)
	return nil
}

func attend(ctx context.Context, s *client.Session, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("attend", flag.ContinueOnError)
	subject := fs.String("subject", "", "class subject")
	date := fs.String("date", time.Now().Format(models.DateLayout), "class date")
	status := fs.String("status", string(models.AttendancePresent), "present, absent or late")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(s); err != nil {
		return err
	}
	id, err := s.API().MarkAttendance(ctx, dto.AttendanceRequest{Subject: *subject, Date: *date, Status: *status})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Attendance #%d marked %s for %s on %s\n", id, *status, *subject, *date)
	return nil
}

func attendanceStats(ctx context.Context, s *client.Session, out io.Writer) error {
	if err := requireSession(s); err != nil {
		return err
	}
	stats, err := s.API().AttendanceStats(ctx)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Fprintln(out, "No attendance recorded")
		return nil
	}
	for _, st := range stats {
		fmt.Fprintf(out, "%-20s %d/%d present (%.2f%%)\n", st.Subject, st.Present, st.TotalClasses, st.Percentage)
	}
	return nil
}

func feedback(ctx context.Context, s *client.Session, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("feedback", flag.ContinueOnError)
	title := fs.String("title", "", "short summary")
	message := fs.String("message", "", "your feedback")
	category := fs.String("category", "", "e.g. canteen, library")
	rating := fs.Int("rating", 0, "1 to 5")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireSession(s); err != nil {
		return err
	}
	id, err := s.API().SubmitFeedback(ctx, dto.FeedbackRequest{Title: *title, Message: *message, Category: *category, Rating: *rating})
	if err != nil {
		return err
	}
	summary, err := s.API().FeedbackSummary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Feedback #%d submitted. Campus average %.2f over %d ratings\n", id, summary.AverageRating, summary.TotalFeedback)
	return nil
}

func requireSession(s *client.Session) error {
	if _, ok := s.Profile(); !ok {
		return errors.New("sign in first: campusctl login -email you@campus.edu")
	}
	return nil
}

func promptPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func sessionFile() (string, error) {
	if path := strings.TrimSpace(os.Getenv("CAMPUS_SESSION_FILE")); path != "" {
		return path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "campusctl", "session.json"), nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
