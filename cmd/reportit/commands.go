package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/spec-kit/ticket-client/internal/client"
	"github.com/spec-kit/ticket-client/internal/domain"
	"github.com/spec-kit/ticket-client/internal/events"
	"github.com/spec-kit/ticket-client/internal/screen"
	"github.com/spec-kit/ticket-client/internal/session"
	apperrors "github.com/spec-kit/ticket-client/pkg/util/errorutil"
)

func (a *app) login(ctx context.Context, args []string) error {
	flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
	username := flags.StringP("username", "u", "", "account username")
	password := flags.StringP("password", "p", "", "account password (prompted when empty)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	var err error
	if *username == "" {
		if *username, err = a.prompt("Username: "); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = a.promptSecret("Password: "); err != nil {
			return err
		}
	}

	auth := client.NewAuthClient(a.cfg.API.BaseURL, a.clientOptions()...)
	sess, err := auth.Login(ctx, *username, *password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := session.Save(ctx, a.backend, sess); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s (%s)\n", nameOr(sess.UserName), sess.Kind().ReporterRole())
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := session.Clear(ctx, a.backend); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *app) create(args []string) error {
	flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
	issue := flags.StringP("issue", "i", "", "issue description")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *issue == "" && flags.NArg() > 0 {
		*issue = strings.Join(flags.Args(), " ")
	}

	done := a.settled(events.ScreenCreateTicket)
	tickets := client.NewTicketClient(a.cfg.API.BaseURL, a.clientOptions()...)
	s := screen.NewCreateTicketScreen(a.deps(), a.store, tickets, 0)
	defer s.Close()

	s.Open()
	st := s.State()
	if st.Phase == screen.PhaseError {
		return errors.New(st.Message)
	}
	fmt.Fprintf(a.out, "Date:     %s\nStatus:   %s\nReporter: %s\n", st.CreatedDate, st.TicketStatus, st.Reporter)

	s.SetIssueText(*issue)
	if !s.Submit() {
		st = s.State()
		if st.ValidationMessage != "" {
			return errors.New(st.ValidationMessage)
		}
		return errors.New(st.Message)
	}
	e := <-done
	st = e.Payload.(screen.CreateState)
	if st.Phase == screen.PhaseError {
		return errors.New(st.Message)
	}
	fmt.Fprintln(a.out, st.Message)
	return nil
}

func (a *app) list() error {
	done := a.settled(events.ScreenTicketList)
	tickets := client.NewTicketClient(a.cfg.API.BaseURL, a.clientOptions()...)
	s := screen.NewTicketListScreen(a.deps(), a.store, tickets)
	defer s.Close()

	seq := s.Open()
	var st screen.ListState
	for e := range done {
		if e.Seq == seq {
			st = e.Payload.(screen.ListState)
			break
		}
	}
	if st.Phase == screen.PhaseError {
		return errors.New(st.Message)
	}
	if st.Empty() {
		fmt.Fprintln(a.out, st.Message)
		return nil
	}
	for _, r := range st.Records {
		printRecord(a, r)
	}
	return nil
}

func printRecord(a *app, r domain.TicketRecord) {
	fmt.Fprintf(a.out, "#%s  %s\n", r.TicketID, r.IssueLabel())
	fmt.Fprintf(a.out, "    status:   %s\n", r.StatusLabel())
	fmt.Fprintf(a.out, "    created:  %s\n", r.CreatedLabel())
	fmt.Fprintf(a.out, "    finished: %s\n", r.FinishedLabel())
	fmt.Fprintf(a.out, "    assignee: %s\n", r.AssigneeLabel())
}

func (a *app) forgotPassword(args []string) error {
	flags := pflag.NewFlagSet("forgot-password", pflag.ContinueOnError)
	username := flags.StringP("username", "u", "", "account username")
	email := flags.StringP("email", "e", "", "account email")
	if err := flags.Parse(args); err != nil {
		return err
	}

	recovery := client.NewRecoveryClient(a.cfg.API.BaseURL, a.clientOptions()...)
	flow := client.NewRecoveryFlow(recovery)

	sent := a.settled(events.ScreenForgotPassword)
	forgot := screen.NewForgotPasswordScreen(a.deps(), flow)
	defer forgot.Close()
	forgot.SetUsername(*username)
	forgot.SetEmail(*email)
	if !forgot.SendOtp() {
		return errors.New(forgot.State().Message)
	}
	st := (<-sent).Payload.(screen.ForgotState)
	if st.Phase == screen.PhaseError || st.Next == nil {
		return errors.New(st.Message)
	}
	fmt.Fprintln(a.out, st.Message)

	verified := a.settled(events.ScreenVerifyOtp)
	verify, err := screen.NewVerifyOtpScreen(a.deps(), *st.Next)
	if err != nil {
		return err
	}
	defer verify.Close()

	for {
		otp, err := a.prompt("OTP: ")
		if err != nil {
			return err
		}
		password, err := a.promptSecret("New password: ")
		if err != nil {
			return err
		}
		verify.SetOtp(otp)
		verify.SetNewPassword(password)
		if !verify.Verify() {
			drain(verified)
			fmt.Fprintln(a.out, verify.State().Message)
			continue
		}
		vs := (<-verified).Payload.(screen.VerifyState)
		fmt.Fprintln(a.out, vs.Message)
		if vs.Done {
			return nil
		}
		if vs.ErrCode == apperrors.CodeFlowState {
			return errors.New(vs.Message)
		}
	}
}

func drain(ch <-chan events.Event) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func nameOr(name string) string {
	if name == "" {
		return "User"
	}
	return name
}
