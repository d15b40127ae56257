package cli

import (
	"github.com/KotFed0t/stock_risk_client/internal/model"
	"github.com/KotFed0t/stock_risk_client/internal/transport/cli/middleware"
	"github.com/spf13/cobra"
)

func handle(fn middleware.RunE) middleware.RunE {
	return middleware.Chain(fn, middleware.Recover(), middleware.Logger())
}

// NewRootCmd wires every command to its controller handler.
func NewRootCmd(ctrl *Controller) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stockrisk",
		Short: "Stock risk analytics client",
		Long: `stockrisk searches companies and requests risk analytics (Value at Risk,
Hurst exponent) from the stock analytics service. Without a subcommand it
starts the interactive shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          handle(ctrl.Shell),
	}

	rootCmd.AddCommand(newLoginCmd(ctrl))
	rootCmd.AddCommand(newRegisterCmd(ctrl))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE:  handle(ctrl.Logout),
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE:  handle(ctrl.WhoAmI),
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "search QUERY",
		Short: "Search companies by symbol or name",
		Args:  cobra.MinimumNArgs(1),
		RunE:  handle(ctrl.Search),
	})
	rootCmd.AddCommand(newAnalyzeCmd(ctrl))
	rootCmd.AddCommand(newProfileCmd(ctrl))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE:  handle(ctrl.Shell),
	})

	return rootCmd
}

func newLoginCmd(ctrl *Controller) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE:  handle(ctrl.Login),
	}
	cmd.Flags().StringP("username", "u", "", "account email (prompted if empty)")
	cmd.Flags().StringP("password", "p", "", "password (prompted if empty)")
	return cmd
}

func newRegisterCmd(ctrl *Controller) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE:  handle(ctrl.Register),
	}
	cmd.Flags().String("name", "", "first name")
	cmd.Flags().String("surname", "", "last name")
	cmd.Flags().String("email", "", "email, used as username")
	cmd.Flags().String("password", "", "password")
	cmd.Flags().String("confirm-password", "", "password again")
	return cmd
}

func newAnalyzeCmd(ctrl *Controller) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Request risk analytics for a company",
		Long: `Request risk analytics for a company.
Example: stockrisk analyze IBM --interval daily --var --method historical --confidence 99`,
		Args: cobra.ExactArgs(1),
		RunE: handle(ctrl.Analyze),
	}

	cmd.Flags().String("interval", "", "price interval: 1min, 5min, 15min, 30min, 60min, daily, weekly, monthly")
	cmd.Flags().Bool("var", false, "calculate Value at Risk")
	cmd.Flags().Bool("hurst", false, "calculate the Hurst exponent")
	cmd.Flags().String("method", "", "VaR method: historical, linear_model, monte_carlo")
	cmd.Flags().String("historical-days", model.DefaultHistoricalDays, "VaR historical days (10-10000)")
	cmd.Flags().String("horizon-days", model.DefaultHorizonDays, "VaR horizon days (1-10000)")
	cmd.Flags().String("portfolio-value", model.DefaultPortfolioValue, "VaR portfolio value (10-1000000000)")
	cmd.Flags().String("confidence", model.DefaultConfidenceLevel, "VaR confidence level in percent (1-99)")
	cmd.Flags().String("report", "", "also write an xlsx report to this file")
	cmd.Flags().Bool("upload", false, "upload the report to Google Drive")

	return cmd
}

func newProfileCmd(ctrl *Controller) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile",
		Args:  cobra.NoArgs,
		RunE:  handle(ctrl.ProfileShow),
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Change name, surname or email",
		Args:  cobra.NoArgs,
		RunE:  handle(ctrl.ProfileUpdate),
	}
	updateCmd.Flags().String("name", "", "new first name")
	updateCmd.Flags().String("surname", "", "new last name")
	updateCmd.Flags().String("email", "", "new email")

	profileCmd.AddCommand(updateCmd)

	return profileCmd
}
