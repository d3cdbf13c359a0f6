// Command iamcore-demo runs a login, authorize, and logout round trip
// against in-memory collaborators. It exists to exercise the engine wiring
// end to end and to serve as a minimal integration example.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	iamcore "github.com/tenvault/iamcore"
)

var buildVersion = "dev"

type demoProviders struct {
	accounts map[string]iamcore.Account
	users    map[string]iamcore.UserInfo
	roles    map[string][]string
	grants   map[string][]string
}

func (d *demoProviders) FindAccount(_ context.Context, authType iamcore.AuthType, authAccount string) (*iamcore.Account, error) {
	account, ok := d.accounts[string(authType)+":"+authAccount]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (d *demoProviders) GetUser(_ context.Context, userType, userID string) (*iamcore.UserInfo, error) {
	user, ok := d.users[userType+":"+userID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (d *demoProviders) GetRoleCodes(_ context.Context, p iamcore.Principal) ([]string, error) {
	return d.roles[p.UserTypeAndID()], nil
}

func (d *demoProviders) GetPermissionCodes(_ context.Context, roleCodes []string) ([]string, error) {
	var codes []string
	for _, role := range roleCodes {
		codes = append(codes, d.grants[role]...)
	}
	return codes, nil
}

func seedProviders(engine *iamcore.Engine, account, secret string) (*demoProviders, error) {
	stored := iamcore.Account{
		UserType:    "IamUser",
		UserID:      "1001",
		AuthType:    iamcore.AuthTypePassword,
		AuthAccount: account,
		AuthSecret:  secret,
	}
	if err := engine.EncryptPwd(&stored); err != nil {
		return nil, err
	}

	return &demoProviders{
		accounts: map[string]iamcore.Account{
			string(iamcore.AuthTypePassword) + ":" + account: stored,
		},
		users: map[string]iamcore.UserInfo{
			"IamUser:1001": {
				UserType:    "IamUser",
				UserID:      "1001",
				TenantID:    "tenant-1",
				OrgID:       "org-1",
				DisplayName: "Demo Admin",
			},
		},
		roles: map[string][]string{
			"IamUser:1001": {"ADMIN"},
		},
		grants: map[string][]string{
			"ADMIN": {"IamUser:read", "IamUser:write"},
		},
	}, nil
}

func runRoundTrip(cmd *cobra.Command, account, secret, code string) error {
	// Build twice: the first engine only supplies EncryptPwd for seeding.
	seeder, err := demoEngine(&demoProviders{})
	if err != nil {
		return err
	}
	defer seeder.Close()

	providers, err := seedProviders(seeder, account, secret)
	if err != nil {
		return err
	}

	engine, err := demoEngine(providers)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := context.Background()
	result, err := engine.Authenticate(ctx, iamcore.AuthTypePassword, account, secret)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	cmd.Printf("authenticated %s, token %s\n", result.Principal.UserTypeAndID(), result.Token)

	ctx, err = engine.Attach(ctx, result.Token)
	if err != nil {
		return fmt.Errorf("attach: %w", err)
	}

	if err := engine.Authorize(ctx, code); err != nil {
		if errors.Is(err, iamcore.ErrPermissionDenied) {
			cmd.Printf("authorize %s: denied (%v)\n", code, err)
		} else {
			return fmt.Errorf("authorize: %w", err)
		}
	} else {
		cmd.Printf("authorize %s: allowed\n", code)
	}

	if err := engine.Logout(ctx, result.Token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	cmd.Printf("logged out, tenant now %q\n", engine.CurrentTenantID(ctx))
	return nil
}

func demoEngine(p *demoProviders) (*iamcore.Engine, error) {
	return iamcore.New().
		WithAccountProvider(p).
		WithUserProvider(p).
		WithRoleProvider(p).
		WithResourceProvider(p).
		WithAuditSink(iamcore.NewJSONWriterSink(os.Stderr)).
		Build()
}

func main() {
	var (
		account string
		secret  string
		code    string
	)

	rootCmd := &cobra.Command{
		Use:   "iamcore-demo",
		Short: "iamcore round-trip demo",
		Long:  "Runs login, authorize, and logout against in-memory collaborators.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoundTrip(cmd, account, secret, code)
		},
	}
	rootCmd.Flags().StringVar(&account, "account", "admin", "login identifier")
	rootCmd.Flags().StringVar(&secret, "secret", "123456", "login secret")
	rootCmd.Flags().StringVar(&code, "code", "IamUser:read,IamUser:write", "required permission code expression")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the demo version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s\n", buildVersion)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
