package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/happi2206/75progress/internal/apperr"
	"github.com/happi2206/75progress/internal/dateutil"
	"github.com/happi2206/75progress/internal/models"
)

type InitCmd struct {
	Name  string `help:"Your display name."`
	Email string `help:"Contact email."`
	Goal  string `help:"What you want out of the 75 days."`
	Start string `help:"Challenge start date (YYYY-MM-DD). Defaults to today."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized 75progress storage at: %s\n", ctx.Store.GetConfigPath())

	start := dateutil.Normalize(time.Now())
	if c.Start != "" {
		parsed, err := dateutil.ParseISO(c.Start)
		if err != nil {
			return apperr.Wrap(apperr.Validation, "invalid start date", err)
		}
		start = parsed
	}
	if err := ctx.Store.SetChallengeStart(start); err != nil {
		return err
	}
	fmt.Printf("Challenge starts: %s\n", dateutil.ISO(start))

	if c.Name == "" && c.Email == "" && c.Goal == "" {
		return nil
	}

	profile := models.UserProfile{
		Name:      strings.TrimSpace(c.Name),
		Email:     strings.TrimSpace(c.Email),
		Goal:      strings.TrimSpace(c.Goal),
		StartDate: start,
	}
	if issues := validateProfile(profile); len(issues) > 0 {
		for _, issue := range issues {
			fmt.Println(warningStyle.Render("Warning: " + issue))
		}
	}

	if err := ctx.Store.SaveProfile(profile); err != nil {
		return err
	}
	fmt.Printf("Profile saved for %s\n", profile.Name)
	return nil
}

// validateProfile returns advisory issues; the profile is saved either
// way.
func validateProfile(p models.UserProfile) []string {
	var issues []string
	if p.Name == "" {
		issues = append(issues, "profile name is empty")
	}
	if p.Email != "" && (!strings.Contains(p.Email, "@") || strings.HasPrefix(p.Email, "@") || strings.HasSuffix(p.Email, "@")) {
		issues = append(issues, fmt.Sprintf("email %q does not look valid", p.Email))
	}
	return issues
}
