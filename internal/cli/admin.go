package cli

import (
	"context"
	"strconv"

	"ledger-service/internal/domain"
	"ledger-service/internal/server"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(accountCmd, accountTypeCmd, branchCmd, formCmd)

	accountCmd.AddCommand(accountCreateCmd)
	accountCreateCmd.Flags().String("initial-balance", "0", "Opening balance")
	accountCreateCmd.Flags().Int64("form-id", 0, "Application form to link (optional)")

	accountTypeCmd.AddCommand(accountTypeCreateCmd)
	accountTypeCreateCmd.Flags().String("name", "", "Account type name")
	accountTypeCreateCmd.Flags().String("min-balance", "0", "Minimum balance for accounts of this type")
	_ = accountTypeCreateCmd.MarkFlagRequired("name")

	branchCmd.AddCommand(branchAddCmd)
	branchAddCmd.Flags().String("name", "", "Branch name")
	branchAddCmd.Flags().String("state", "", "State")
	branchAddCmd.Flags().String("country", "", "Country")
	_ = branchAddCmd.MarkFlagRequired("name")

	formCmd.AddCommand(formApproveCmd)
}

var accountCmd = &cobra.Command{Use: "account", Short: "Manage accounts"}

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open an account with a freshly allocated number",
	RunE: func(cmd *cobra.Command, _ []string) error {
		raw, _ := cmd.Flags().GetString("initial-balance")
		formID, _ := cmd.Flags().GetInt64("form-id")

		balance, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.Wrap(domain.ErrInvalidAmount, err)
		}
		in := domain.AccountCreate{InitialBalance: balance}
		if formID > 0 {
			in.FormID = &formID
		}

		return withApp(cmd, func(ctx context.Context, app *server.App) error {
			a, err := app.Accounts.CreateAccount(ctx, in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a)
		})
	},
}

var accountTypeCmd = &cobra.Command{Use: "account-type", Short: "Manage account types"}

var accountTypeCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Define an account type and its minimum balance",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("name")
		raw, _ := cmd.Flags().GetString("min-balance")

		minBalance, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.Wrap(domain.ErrInvalidAmount, err)
		}

		return withApp(cmd, func(ctx context.Context, app *server.App) error {
			t, err := app.Types.Create(ctx, &domain.AccountType{TypeName: name, MinBalance: minBalance})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		})
	},
}

var branchCmd = &cobra.Command{Use: "branch", Short: "Manage branches"}

var branchAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a branch with a freshly allocated IFSC",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var in domain.BranchInput
		in.BranchName, _ = cmd.Flags().GetString("name")
		in.State, _ = cmd.Flags().GetString("state")
		in.Country, _ = cmd.Flags().GetString("country")

		return withApp(cmd, func(ctx context.Context, app *server.App) error {
			b, err := app.Branches.Add(ctx, in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), b)
		})
	},
}

var formCmd = &cobra.Command{Use: "form", Short: "Manage application forms"}

var formApproveCmd = &cobra.Command{
	Use:   "approve FORM_ID",
	Short: "Approve a filled form and open its account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return domain.Invalid("form id must be a positive integer")
		}

		return withApp(cmd, func(ctx context.Context, app *server.App) error {
			a, err := app.Forms.Approve(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), a)
		})
	},
}
