package cmd

import (
	"strings"

	"lever/core"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var assetTiers = map[string]core.AssetTier{
	"STABLE":   core.AssetTierStable,
	"CROSS_A":  core.AssetTierCrossA,
	"CROSS_B":  core.AssetTierCrossB,
	"ISOLATED": core.AssetTierIsolated,
}

var addAssetCmd = &cobra.Command{
	Use:     "add-asset",
	Aliases: []string{"aa"},
	Short:   "register a collateral asset",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		str := provideStores(database)
		srv := provideServices(str)

		assetID, _ := cmd.Flags().GetString("asset")
		if assetID == "" {
			panic("invalid asset id")
		}
		symbol, _ := cmd.Flags().GetString("symbol")
		if symbol == "" {
			panic("invalid symbol")
		}
		tierFlag, _ := cmd.Flags().GetString("tier")
		tier, ok := assetTiers[strings.ToUpper(tierFlag)]
		if !ok {
			panic("invalid tier")
		}

		asset := core.AssetConfig{
			AssetID:  assetID,
			Symbol:   strings.ToUpper(symbol),
			Decimals: cast.ToInt32(cmd.Flag("decimals").Value.String()),
			Tier:     tier,
		}
		asset.BorrowThreshold, _ = cmd.Flags().GetInt64("borrow-threshold")
		asset.LiquidationThreshold, _ = cmd.Flags().GetInt64("liquidation-threshold")

		if flag, _ := cmd.Flags().GetString("max-supply"); flag != "" {
			asset.MaxSupplyThreshold, _ = decimal.NewFromString(flag)
		}
		if flag, _ := cmd.Flags().GetString("debt-cap"); flag != "" {
			asset.IsolationDebtCap, _ = decimal.NewFromString(flag)
		}

		if err := srv.registry.RegisterAsset(ctx, adminCaller(cmd), &asset); err != nil {
			cmd.PrintErrln("register asset error:", err)
			return
		}

		cmd.Println("asset", asset.Symbol, "registered")
	},
}

var listAssetsCmd = &cobra.Command{
	Use:     "list-assets",
	Aliases: []string{"la"},
	Short:   "list registered assets",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		str := provideStores(database)

		assets, err := str.registry.AllAssets(ctx)
		if err != nil {
			cmd.PrintErrln("list assets error:", err)
			return
		}

		for _, asset := range assets {
			cmd.Println(asset.Symbol, asset.AssetID, asset.Tier.String())
		}
	},
}

var setPriceCmd = &cobra.Command{
	Use:     "set-price",
	Aliases: []string{"sp"},
	Short:   "write an asset price",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		str := provideStores(database)
		srv := provideServices(str)

		assetID, _ := cmd.Flags().GetString("asset")
		if assetID == "" {
			panic("invalid asset id")
		}

		flag, _ := cmd.Flags().GetString("price")
		price, err := decimal.NewFromString(flag)
		if err != nil {
			panic("invalid price")
		}

		if err := srv.registry.SetPrice(ctx, assetID, price); err != nil {
			cmd.PrintErrln("set price error:", err)
			return
		}
	},
}

func init() {
	rootCmd.AddCommand(addAssetCmd)
	rootCmd.AddCommand(listAssetsCmd)
	rootCmd.AddCommand(setPriceCmd)

	addAssetCmd.Flags().String("asset", "", "asset id")
	addAssetCmd.Flags().String("symbol", "", "asset symbol")
	addAssetCmd.Flags().Int32("decimals", 8, "asset decimals")
	addAssetCmd.Flags().String("tier", "", "STABLE | CROSS_A | CROSS_B | ISOLATED")
	addAssetCmd.Flags().Int64("borrow-threshold", 0, "borrow threshold in bps")
	addAssetCmd.Flags().Int64("liquidation-threshold", 0, "liquidation threshold in bps")
	addAssetCmd.Flags().String("max-supply", "", "max supply per position, 0 = unlimited")
	addAssetCmd.Flags().String("debt-cap", "", "isolation debt cap, ISOLATED tier only")
	addAssetCmd.Flags().String("caller", "", "admin user id")

	setPriceCmd.Flags().String("asset", "", "asset id")
	setPriceCmd.Flags().String("price", "", "price in base currency")
}
