package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mdouchement/udeshare/internal/auth"
	"github.com/mdouchement/udeshare/internal/bridge"
	"github.com/mdouchement/udeshare/internal/client"
	"github.com/mdouchement/udeshare/internal/model"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	refresh bool

	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Login and share the selected Udemy account with the browser",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err = a.bridge.WaitReady(c.Context()); err != nil {
				return err
			}

			email, password, err := client.PromptCredentials()
			if err != nil {
				return err
			}

			flow, err := a.flow()
			if err != nil {
				return err
			}

			spinner, _ := pterm.DefaultSpinner.Start("Logging in...")
			result, err := flow.Login(c.Context(), email, password)
			if err != nil {
				spinner.Fail(err.Error())
				return errors.New("login failed")
			}
			spinner.Success(fmt.Sprintf("Logged in as %s <%s>", result.Session.Fullname, result.Session.Email))

			a.bridge.Navigate(c.Context(), bridge.TargetUdemy)
			return nil
		},
	}

	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Forget the local session and clear the browser cookies",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err = client.Logout(c.Context(), a.auth, a.bridge); err != nil {
				pterm.Warning.Println(err)
			}
			a.bridge.Navigate(c.Context(), bridge.TargetLogin)

			pterm.Success.Println("Logged out")
			return nil
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the local session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			return pterm.DefaultTable.WithData(status(a.auth)).Render()
		},
	}

	coursesCmd = &cobra.Command{
		Use:   "courses",
		Short: "List the courses of the shared account",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			token, ok := a.auth.Token()
			if !ok || !a.auth.IsAuthenticated() {
				return errors.New("not logged in")
			}

			courses, err := a.bridge.FetchCourses(c.Context(), token, refresh)
			if err != nil {
				return errors.Wrap(err, "could not fetch courses")
			}
			if len(courses) == 0 {
				pterm.Info.Println("No course")
				return nil
			}

			rows := lo.Map(courses, func(course model.Course, _ int) []string {
				return []string{course.ID, course.Title, course.URL}
			})
			return pterm.DefaultTable.
				WithHasHeader().
				WithData(append([][]string{{"ID", "Title", "URL"}}, rows...)).
				Render()
		},
	}

	openCmd = &cobra.Command{
		Use:       "open [login|udemy|home]",
		Short:     "Open a page in the browser, defaults to the page matching the session state",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{bridge.TargetLogin, bridge.TargetUdemy, bridge.TargetHome},
		RunE: func(c *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			target := bridge.TargetLogin
			if a.auth.IsAuthenticated() {
				target = bridge.TargetUdemy
			}
			if len(args) == 1 {
				target = args[0]
			}

			if err = a.bridge.WaitReady(c.Context()); err != nil {
				return err
			}
			a.bridge.Navigate(c.Context(), target)
			return nil
		},
	}

	cookiesCmd = &cobra.Command{
		Use:   "cookies",
		Short: "Manage the browser cookies",
	}

	cookiesClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every browser cookie",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(c.Context(), client.ReadyTimeout)
			defer cancel()

			if err = a.bridge.ClearCookies(ctx); err != nil {
				return err
			}
			pterm.Success.Println("Cookies cleared")
			return nil
		},
	}
)

func status(m *auth.Manager) [][]string {
	info := m.UserInfo()
	rows := [][]string{
		{"Authenticated", fmt.Sprint(m.IsAuthenticated())},
		{"User", info.Fullname},
		{"Email", info.Email},
	}

	if session, ok := m.Session(); ok && !session.LoginTime.IsZero() {
		rows = append(rows,
			[]string{"Logged in at", session.LoginTime.Local().Format(time.RFC1123)},
			[]string{"Expires at", session.LoginTime.Add(auth.SessionTTL).Local().Format(time.RFC1123)},
		)
	}

	if account, ok := m.Account(); ok {
		rows = append(rows, []string{"Account", lo.CoalesceOrEmpty(account.Email, account.ID)})
	}

	if claims, ok := m.TokenClaims(); ok {
		rows = append(rows, []string{"Token subject", fmt.Sprint(claims["sub"])})
		if exp, ok := claims["exp"].(float64); ok {
			rows = append(rows, []string{"Token expiry", time.Unix(int64(exp), 0).Local().Format(time.RFC1123)})
		}
	}

	return rows
}
