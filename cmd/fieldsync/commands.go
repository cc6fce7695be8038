package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"fieldsync/internal/adapter/jwtclaims"
	"fieldsync/internal/client"
	"fieldsync/internal/domain"
)

type usageError string

func (e usageError) Error() string { return string(e) }

var errNotSignedIn = &domain.Error{Kind: domain.KindAuthorizationExpired, Op: "cli", Detail: "not signed in"}

type cli struct {
	c   *client.Client
	reg *prometheus.Registry
	out io.Writer
}

func (a *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.c.Logout(ctx)
	case "whoami":
		return a.whoami()
	case "incidents":
		return a.incidents(ctx, args)
	case "users":
		return a.users(ctx, args)
	case "boundary":
		return a.boundary(ctx, args)
	case "analytics":
		return a.analytics(ctx)
	case "nav":
		return a.nav(args)
	case "metrics":
		if a.reg == nil {
			return usageError("metrics: set FIELDSYNC_METRICS=true")
		}
		if len(args) == 0 {
			return usageError("metrics: expected a command to measure")
		}
		if err := a.run(ctx, args[0], args[1:]); err != nil {
			return err
		}
		return a.metrics()
	default:
		return usageError(fmt.Sprintf("unknown command %q", cmd))
	}
}

func (a *cli) requireSession() error {
	if !a.c.Session.IsAuthenticated() {
		return errNotSignedIn
	}
	return nil
}

func (a *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	u, err := a.c.Login(ctx, *user, *pass)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s (%s, id %d)\n", u.Username, u.Role, u.ID)
	return nil
}

func (a *cli) whoami() error {
	s := a.c.Session.Current()
	if !s.Authenticated() {
		fmt.Fprintln(a.out, "not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "user:  %s (id %d)\nrole:  %s\n", s.User.Username, s.User.ID, s.User.Role)
	claims, err := jwtclaims.Inspect(s.Token)
	if err != nil {
		fmt.Fprintf(a.out, "token: unreadable (%v)\n", err)
		return nil
	}
	if exp := claims.Expiry(); !exp.IsZero() {
		state := "not expired (unverified)"
		if claims.Expired(time.Now()) {
			state = "expired"
		}
		fmt.Fprintf(a.out, "token: %s until %s\n", state, exp.Local().Format(time.RFC1123))
	}
	return nil
}

func (a *cli) incidents(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if len(args) == 0 {
		return usageError("incidents: missing subcommand")
	}
	store := a.c.Incidents
	switch args[0] {
	case "list":
		store.FetchAll(ctx)
		if err := store.LastError(); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tTYPE\tPRIORITY\tLAT\tLNG\tREPORTED BY")
		for _, inc := range store.Items() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.5f\t%.5f\t%d\n",
				inc.ID, inc.Title, inc.IncidentType, inc.Priority, inc.Latitude, inc.Longitude, inc.ReportedBy)
		}
		return tw.Flush()
	case "create", "update":
		fs := flag.NewFlagSet("incidents "+args[0], flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		id := fs.Int64("id", 0, "incident id (update)")
		title := fs.String("title", "", "title")
		typ := fs.String("type", "", "incident type")
		priority := fs.String("priority", string(domain.PriorityMedium), "LOW|MEDIUM|HIGH|CRITICAL")
		lat := fs.Float64("lat", 0, "latitude")
		lng := fs.Float64("lng", 0, "longitude")
		desc := fs.String("desc", "", "description")
		if err := fs.Parse(args[1:]); err != nil {
			return usageError(err.Error())
		}
		in := domain.IncidentInput{
			Title: *title, IncidentType: *typ, Priority: domain.Priority(*priority),
			Latitude: *lat, Longitude: *lng,
		}
		if *desc != "" {
			in.Description = desc
		}
		if args[0] == "create" {
			rec, err := store.Create(ctx, in)
			if err != nil {
				return err
			}
			return printJSON(a.out, rec)
		}
		if *id <= 0 {
			return usageError("incidents update: -id is required")
		}
		rec, err := store.Update(ctx, *id, in)
		if err != nil {
			return err
		}
		return printJSON(a.out, rec)
	case "delete":
		id, err := idArg(args[1:])
		if err != nil {
			return err
		}
		if err := store.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted incident %d\n", id)
		return nil
	default:
		return usageError(fmt.Sprintf("incidents: unknown subcommand %q", args[0]))
	}
}

func (a *cli) users(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	if len(args) == 0 {
		return usageError("users: missing subcommand")
	}
	store := a.c.Users
	switch args[0] {
	case "list":
		store.FetchAll(ctx)
		if err := store.LastError(); err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tROLE\tACTIVE")
		for _, u := range store.Items() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Username, u.Email, u.Role, u.Active)
		}
		return tw.Flush()
	case "create":
		fs := flag.NewFlagSet("users create", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		in := domain.UserInput{}
		fs.StringVar(&in.Username, "username", "", "username")
		fs.StringVar(&in.Password, "password", "", "password")
		fs.StringVar(&in.Email, "email", "", "email")
		role := fs.String("role", string(domain.RoleOfficer), "role")
		fs.StringVar(&in.FirstName, "first", "", "first name")
		fs.StringVar(&in.LastName, "last", "", "last name")
		fs.StringVar(&in.BadgeNumber, "badge", "", "badge number")
		if err := fs.Parse(args[1:]); err != nil {
			return usageError(err.Error())
		}
		in.Role = domain.Role(*role)
		u, err := store.Create(ctx, in)
		if err != nil {
			return err
		}
		return printJSON(a.out, u)
	case "delete":
		id, err := idArg(args[1:])
		if err != nil {
			return err
		}
		if err := store.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "deleted user %d\n", id)
		return nil
	default:
		return usageError(fmt.Sprintf("users: unknown subcommand %q", args[0]))
	}
}

func (a *cli) boundary(ctx context.Context, args []string) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	me, _ := a.c.Session.User()
	fs := flag.NewFlagSet("boundary", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	userID := fs.Int64("user", me.ID, "user id")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	a.c.Boundary.FetchBoundary(ctx, *userID)
	if msg := a.c.Boundary.ErrorMessage(); msg != "" {
		return errors.New(msg)
	}
	return printJSON(a.out, a.c.Boundary.Boundary())
}

func (a *cli) analytics(ctx context.Context) error {
	if err := a.requireSession(); err != nil {
		return err
	}
	a.c.Analytics.FetchAnalytics(ctx)
	data := a.c.Analytics.Analytics()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BY TYPE\tCOUNT")
	for _, b := range data.ByType {
		fmt.Fprintf(tw, "%s\t%d\n", b.Name, b.Count)
	}
	fmt.Fprintln(tw, "\nBY PRIORITY\tCOUNT")
	for _, b := range data.ByPriority {
		fmt.Fprintf(tw, "%s\t%d\n", b.Name, b.Count)
	}
	fmt.Fprintf(tw, "\nLOCATIONS\t%d\n", len(data.Locations))
	return tw.Flush()
}

func (a *cli) nav(args []string) error {
	if len(args) != 1 {
		return usageError("nav: expected exactly one path")
	}
	where, err := a.c.Router.Navigate(args[0])
	if err != nil {
		return err
	}
	if where == args[0] {
		fmt.Fprintf(a.out, "%s: allowed\n", where)
	} else {
		fmt.Fprintf(a.out, "%s: redirected to %s\n", args[0], where)
	}
	return nil
}

func (a *cli) metrics() error {
	fmt.Fprintln(a.out)
	families, err := a.reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(a.out, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

func idArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, usageError("expected exactly one id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(fmt.Sprintf("invalid id %q", args[0]))
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
