package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/FactomWyomingEntity/prosper-stake/accounting"
	"github.com/FactomWyomingEntity/prosper-stake/web"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().StringP("host", "s", "http://localhost:7070", "ledger api url")
	rootCmd.PersistentFlags().StringP("key", "k", os.Getenv("PROSPER_STAKE_KEY"), "api key, defaults to $PROSPER_STAKE_KEY")
	rootCmd.PersistentFlags().BoolP("force", "f", false, "Skip a settlement that cannot be paid instead of failing")
	events.Flags().String("kind", "", "Only list events of this kind")
	events.Flags().String("account", "", "Only list events touching this account")
	events.Flags().Int32("offset", 0, "Events to skip")
	events.Flags().Int32("limit", 50, "Events per page")
	events.Flags().String("order", "asc", "Order by id, 'asc' or 'desc'")

	rootCmd.AddCommand(
		stake, unstake, unstakeAll, claim,
		getStake, getRecord, pending, canClaim, canUnstake,
		setRate, changeRate, getRate, rateList,
		setReserve, setPayoutToken, settings,
		grantRole, revokeRole, hasRole,
		mint, balance, allowance, transfer, approve, increaseApproval,
		events, dayStatus,
	)
}

func main() {
	Execute()
}

// Execute is cobra's entry point
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stake-cli",
	Short: "Talk to the prosper-stake ledger api",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var stake = &cobra.Command{
	Use:   "stake <amount>",
	Short: "Stake tokens, settling any pending reward first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).Stake(args[0], force(cmd)))
	},
}

var unstake = &cobra.Command{
	Use:   "unstake <amount>",
	Short: "Unstake part of the stake, settling any pending reward first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).Unstake(args[0], force(cmd)))
	},
}

var unstakeAll = &cobra.Command{
	Use:   "unstake-all",
	Short: "Unstake everything",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).UnstakeAll(force(cmd)))
	},
}

var claim = &cobra.Command{
	Use:   "claim",
	Short: "Claim the pending reward",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).Claim())
	},
}

var getStake = &cobra.Command{
	Use:   "stake-of [account]",
	Short: "Show the stake of an account, or your own",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).GetStake(optional(args, 0)))
	},
}

var getRecord = &cobra.Command{
	Use:   "record [account]",
	Short: "Show the accrual record of an account",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).GetRecord(optional(args, 0)))
	},
}

var pending = &cobra.Command{
	Use:   "pending [account]",
	Short: "Show the reward that would be paid now",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).PendingReward(optional(args, 0)))
	},
}

var canClaim = &cobra.Command{
	Use:   "can-claim [account]",
	Short: "Check whether a claim would succeed",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCheck(client(cmd).CanClaim(optional(args, 0)))
	},
}

var canUnstake = &cobra.Command{
	Use:   "can-unstake [account]",
	Short: "Check whether an unstake would succeed",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCheck(client(cmd).CanUnstake(optional(args, 0)))
	},
}

var setRate = &cobra.Command{
	Use:   "set-rate <day> <rate>",
	Short: "Publish the rate of a day",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, rate, err := dayAndRate(args)
		if err != nil {
			return err
		}
		return client(cmd).SetRate(day, rate)
	},
}

var changeRate = &cobra.Command{
	Use:   "change-rate <day> <rate>",
	Short: "Correct the rate of an unclaimed day",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, rate, err := dayAndRate(args)
		if err != nil {
			return err
		}
		return client(cmd).ChangeRate(day, rate)
	},
}

var getRate = &cobra.Command{
	Use:   "rate <day>",
	Short: "Show the rate of a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		return printResult(client(cmd).GetRate(day))
	},
}

var rateList = &cobra.Command{
	Use:   "rates [limit]",
	Short: "List the most recent rates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit := int64(0)
		if len(args) > 0 {
			var err error
			limit, err = strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return err
			}
		}
		return printResult(client(cmd).Rates(int32(limit)))
	},
}

var setReserve = &cobra.Command{
	Use:   "set-reserve <address>",
	Short: "Point payouts at a new reserve",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).SetReserve(args[0]))
	},
}

var setPayoutToken = &cobra.Command{
	Use:   "set-payout-token <symbol>",
	Short: "Switch the asset rewards are paid in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).SetPayoutToken(args[0]))
	},
}

var settings = &cobra.Command{
	Use:   "settings",
	Short: "Show the ledger settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).Settings())
	},
}

var grantRole = &cobra.Command{
	Use:   "grant <role> <account>",
	Short: "Grant a role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).GrantRole(args[0], args[1]))
	},
}

var revokeRole = &cobra.Command{
	Use:   "revoke <role> <account>",
	Short: "Revoke a role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).RevokeRole(args[0], args[1]))
	},
}

var hasRole = &cobra.Command{
	Use:   "has-role <role> <account>",
	Short: "Check whether an account holds a role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).HasRole(args[0], args[1]))
	},
}

var mint = &cobra.Command{
	Use:   "mint <account> <amount>",
	Short: "Mint staking tokens",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).Mint(args[0], args[1]))
	},
}

var balance = &cobra.Command{
	Use:   "balance <symbol> [account]",
	Short: "Show a token balance",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).Balance(args[0], optional(args, 1)))
	},
}

var allowance = &cobra.Command{
	Use:   "allowance <symbol> <owner> <spender>",
	Short: "Show a token allowance",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).Allowance(args[0], args[1], args[2]))
	},
}

var transfer = &cobra.Command{
	Use:   "transfer <symbol> <to> <amount>",
	Short: "Transfer tokens",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).Transfer(args[0], args[1], args[2]))
	},
}

var approve = &cobra.Command{
	Use:   "approve <symbol> <spender> <amount>",
	Short: "Set an allowance",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).Approve(args[0], args[1], args[2]))
	},
}

var increaseApproval = &cobra.Command{
	Use:   "increase-approval <symbol> <spender> <amount>",
	Short: "Raise an allowance",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).IncreaseApproval(args[0], args[1], args[2]))
	},
}

var events = &cobra.Command{
	Use:   "events",
	Short: "List ledger events",
	RunE: func(cmd *cobra.Command, args []string) error {
		var f accounting.EventFilter
		f.Kind, _ = cmd.Flags().GetString("kind")
		f.Account, _ = cmd.Flags().GetString("account")
		f.Offset, _ = cmd.Flags().GetInt32("offset")
		f.Limit, _ = cmd.Flags().GetInt32("limit")
		f.Order, _ = cmd.Flags().GetString("order")
		return printResult(client(cmd).Events(f))
	},
}

var dayStatus = &cobra.Command{
	Use:   "day",
	Short: "Show the current day and how far the rate table lags",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(client(cmd).DayStatus())
	},
}

func client(cmd *cobra.Command) *web.Client {
	host, _ := cmd.Flags().GetString("host")
	key, _ := cmd.Flags().GetString("key")
	return web.NewClient(host, key)
}

func force(cmd *cobra.Command) bool {
	f, _ := cmd.Flags().GetBool("force")
	return f
}

func optional(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func dayAndRate(args []string) (int64, uint64, error) {
	day, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad day: %s", err.Error())
	}
	rate, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad rate: %s", err.Error())
	}
	return day, rate, nil
}

func printResult(v interface{}, err error) error {
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printCheck(ok bool, err error) error {
	if ok {
		fmt.Println("yes")
		return nil
	}
	if err != nil {
		fmt.Printf("no: %s\n", err.Error())
		return nil
	}
	fmt.Println("no")
	return nil
}
