package cmd

import (
	"fmt"

	"github.com/FactomWyomingEntity/prosper-stake/accounting"
	"github.com/FactomWyomingEntity/prosper-stake/authentication"
	"github.com/FactomWyomingEntity/prosper-stake/database"
	"github.com/FactomWyomingEntity/prosper-stake/dayclock"
	"github.com/FactomWyomingEntity/prosper-stake/engine"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	db.AddCommand(makeKey)
	db.AddCommand(revokeKey)
	db.AddCommand(listKeys)
	db.AddCommand(deploy)
	db.AddCommand(fund)
	rootCmd.AddCommand(db)
}

var db = &cobra.Command{
	Use:   "db",
	Short: "Any direct db interactions can be done through this cli.",
	Long: "All db calls require the db parts of the config to be defined. " +
		"The cli calls interact directly with the database, so care should be taken.",
}

var makeKey = &cobra.Command{
	Use:     "key <account> [label]",
	Short:   "Makes a new api key for the account",
	Example: "prosper-stake db key 0x2000000000000000000000000000000000000001 laptop",
	PreRun:  SoftReadConfig,
	Args:    cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		account, err := ParseAccount(args[0])
		if err != nil {
			exitErr(err)
		}
		label := ""
		if len(args) > 1 {
			label = args[1]
		}

		a := openAuth()
		key, err := a.NewKey(account, label)
		if err != nil {
			exitErr(err)
		}

		fmt.Printf("New Key: %s\n", key)
		fmt.Println("The key is only shown once, store it somewhere safe.")
	},
}

var revokeKey = &cobra.Command{
	Use:     "revoke <id>",
	Short:   "Revokes an api key by its id",
	Example: "prosper-stake db revoke 3yZe7d",
	PreRun:  SoftReadConfig,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := openAuth()
		if err := a.Revoke(args[0]); err != nil {
			exitErr(err)
		}
		fmt.Printf("Revoked %s\n", args[0])
	},
}

var listKeys = &cobra.Command{
	Use:     "keys <account>",
	Short:   "Lists the api keys of an account",
	Example: "prosper-stake db keys 0x2000000000000000000000000000000000000001",
	PreRun:  SoftReadConfig,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		account, err := ParseAccount(args[0])
		if err != nil {
			exitErr(err)
		}

		keys, err := openAuth().Keys(account)
		if err != nil {
			exitErr(err)
		}
		for _, k := range keys {
			status := "active"
			if k.Revoked {
				status = "revoked"
			}
			fmt.Printf("%-10s %-8s %-20s %s\n", k.ID, status, k.Label, k.CreatedAt.Format("2006-01-02 15:04"))
		}
	},
}

var deploy = &cobra.Command{
	Use:   "deploy",
	Short: "Bootstraps the ledger from the Deploy section of the config",
	Long: "Grants the owner, minter, and oracle roles and sets the reserve and payout token. " +
		"Running it against an already deployed ledger does nothing.",
	Example: "prosper-stake db deploy",
	PreRun:  SoftReadConfig,
	Run: func(cmd *cobra.Command, args []string) {
		ledger := openLedger()
		p, err := engine.DeployParamsFromConfig(viper.GetViper())
		if err != nil {
			exitErr(err)
		}

		done, err := ledger.Deploy(*p)
		if err != nil {
			exitErr(err)
		}
		if !done {
			fmt.Println("Ledger was already deployed")
			return
		}
		fmt.Printf("Ledger deployed, owner %s\n", p.Owner.Hex())
	},
}

var fund = &cobra.Command{
	Use:   "fund <symbol> <account> <amount>",
	Short: "Mints payout tokens to an account",
	Long: "Only meant for test deployments, where nothing else issues the payout asset. " +
		"The staking token cannot be minted this way.",
	Example: "prosper-stake db fund WBTC 0x3000000000000000000000000000000000000003 100000000",
	PreRun:  SoftReadConfig,
	Args:    cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		account, err := ParseAccount(args[1])
		if err != nil {
			exitErr(err)
		}
		amount, err := ParseAmount(args[2])
		if err != nil {
			exitErr(err)
		}

		if err := openLedger().MintPayout(args[0], account, amount); err != nil {
			exitErr(err)
		}
		fmt.Printf("Funded %s with %s %s\n", account.Hex(), amount.Dec(), args[0])
	},
}

func openDB() *database.SqlDatabase {
	db, err := database.New(viper.GetViper())
	if err != nil {
		exitErr(err)
	}
	return db
}

func openAuth() *authentication.Authenticator {
	a, err := authentication.NewAuthenticator(openDB().DB)
	if err != nil {
		exitErr(err)
	}
	return a
}

func openLedger() *accounting.Accountant {
	a, err := accounting.NewAccountant(viper.GetViper(), openDB().DB, dayclock.SystemClock{})
	if err != nil {
		exitErr(err)
	}
	return a
}
