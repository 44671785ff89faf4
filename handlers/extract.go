package handlers

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"concierge/models"
)

// Extraction patterns for the structured appointment request, matching the
// chat widget's input convention:
// "Name Jane Doe,email jane@example.com,phone 123456789,date 24/05/2024,time 10:00 PM"
var (
	namePattern  = regexp.MustCompile(`(?i)name\s+([^\s,]+ [^\s,]+)`)
	emailPattern = regexp.MustCompile(`(?i)email\s+([\w.+-]+@[\w.-]+)`)
	phonePattern = regexp.MustCompile(`(?i)phone\s+(\d+)`)
	datePattern  = regexp.MustCompile(`(?i)date\s+([0-9/]+)`)
	timePattern  = regexp.MustCompile(`(?i)time\s+([0-9:]+\s*[AP]M)`)
)

const (
	dateLayout = "02/01/2006"
	timeLayout = "3:04 PM"
)

func firstMatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// ExtractUserDetails pulls the structured appointment request out of the
// free-text question. Absent fields are fine (the assistant can still
// answer general questions); present-but-malformed fields are boundary
// errors so the scheduling core only ever sees validated input.
func ExtractUserDetails(question string, zone *time.Location) (models.UserDetails, error) {
	details := models.UserDetails{
		Name:  firstMatch(namePattern, question),
		Email: firstMatch(emailPattern, question),
		Phone: firstMatch(phonePattern, question),
		Date:  firstMatch(datePattern, question),
		Time:  firstMatch(timePattern, question),
	}

	if details.Email != "" {
		if _, err := mail.ParseAddress(details.Email); err != nil {
			return models.UserDetails{}, fmt.Errorf("invalid email %q", details.Email)
		}
	}

	if details.Date != "" && details.Time != "" {
		requested, err := time.ParseInLocation(
			dateLayout+" "+timeLayout,
			details.Date+" "+strings.ToUpper(details.Time),
			zone,
		)
		if err != nil {
			return models.UserDetails{}, fmt.Errorf("invalid date/time %q %q", details.Date, details.Time)
		}
		details.Requested = &requested
	} else if details.Date != "" || details.Time != "" {
		return models.UserDetails{}, fmt.Errorf("appointment request needs both a date and a time")
	}

	return details, nil
}
