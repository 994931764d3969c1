package cmd

import (
	"encoding/json"

	"lever/core"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var setProtocolCmd = &cobra.Command{
	Use:     "set-protocol",
	Aliases: []string{"spc"},
	Short:   "install a new protocol config",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		str := provideStores(database)
		srv := provideServices(str)

		config := core.ProtocolConfig{}

		readDecimal := func(name string, out *decimal.Decimal) {
			if flag, _ := cmd.Flags().GetString(name); flag != "" {
				value, err := decimal.NewFromString(flag)
				if err != nil {
					panic("invalid " + name)
				}
				*out = value
			}
		}

		readDecimal("profit-target-rate", &config.ProfitTargetRate)
		readDecimal("borrow-rate", &config.BorrowRate)
		readDecimal("multiplier", &config.Multiplier)
		readDecimal("jump-multiplier", &config.JumpMultiplier)
		readDecimal("kink", &config.Kink)
		readDecimal("reward-rate", &config.RewardRate)
		readDecimal("liquidator-threshold", &config.LiquidatorThreshold)
		readDecimal("pool-supply-cap", &config.PoolSupplyCap)
		config.FlashLoanFee, _ = cmd.Flags().GetInt64("flash-loan-fee")

		if err := srv.protocol.LoadProtocolConfig(ctx, adminCaller(cmd), &config); err != nil {
			cmd.PrintErrln("set protocol error:", err)
			return
		}

		cmd.Println("protocol config installed")
	},
}

var showProtocolCmd = &cobra.Command{
	Use:   "show-protocol",
	Short: "print the active protocol config",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		str := provideStores(database)
		srv := provideServices(str)

		config, err := srv.protocol.Current(ctx)
		if err != nil {
			cmd.PrintErrln("read protocol error:", err)
			return
		}

		data, _ := json.MarshalIndent(config, "", "  ")
		cmd.Println(string(data))
	},
}

var setStakeCmd = &cobra.Command{
	Use:   "set-stake",
	Short: "update a liquidator governance stake",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		str := provideStores(database)
		srv := provideServices(str)

		userID, _ := cmd.Flags().GetString("user")
		if userID == "" {
			panic("invalid user id")
		}

		flag, _ := cmd.Flags().GetString("amount")
		amount, err := decimal.NewFromString(flag)
		if err != nil {
			panic("invalid amount")
		}

		if err := srv.protocol.SetStake(ctx, adminCaller(cmd), userID, amount); err != nil {
			cmd.PrintErrln("set stake error:", err)
			return
		}
	},
}

var initVaultCmd = &cobra.Command{
	Use:   "init-vault",
	Short: "bootstrap the liquidity vault at the genesis block",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		str := provideStores(database)
		srv := provideServices(str)

		if err := srv.vault.Bootstrap(ctx, adminCaller(cmd)); err != nil {
			cmd.PrintErrln("init vault error:", err)
			return
		}

		cmd.Println("vault initialized")
	},
}

func init() {
	rootCmd.AddCommand(setProtocolCmd)
	rootCmd.AddCommand(showProtocolCmd)
	rootCmd.AddCommand(setStakeCmd)
	rootCmd.AddCommand(initVaultCmd)

	setProtocolCmd.Flags().String("profit-target-rate", "", "commission fraction of lender yield")
	setProtocolCmd.Flags().String("borrow-rate", "", "baseline annualized borrow rate")
	setProtocolCmd.Flags().String("multiplier", "", "utilization slope per year")
	setProtocolCmd.Flags().String("jump-multiplier", "", "slope beyond the kink per year")
	setProtocolCmd.Flags().String("kink", "", "utilization point where the jump slope starts")
	setProtocolCmd.Flags().String("reward-rate", "", "per-block reward emission")
	setProtocolCmd.Flags().String("liquidator-threshold", "", "minimum governance stake to liquidate")
	setProtocolCmd.Flags().String("pool-supply-cap", "", "total collateral value cap, 0 = unlimited")
	setProtocolCmd.Flags().Int64("flash-loan-fee", 0, "flash loan fee in bps")
	setProtocolCmd.Flags().String("caller", "", "admin user id")

	setStakeCmd.Flags().String("user", "", "liquidator user id")
	setStakeCmd.Flags().String("amount", "", "staked amount")
	setStakeCmd.Flags().String("caller", "", "admin user id")

	initVaultCmd.Flags().String("caller", "", "admin user id")
}
