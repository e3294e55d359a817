package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	ledgersdk "github.com/ledgerkit/ledger-sdk-go"
)

func main() {
	rootCmd := &cobra.Command{Use: "ledgerctl"}
	rootCmd.PersistentFlags().String("config", "", "path to a TOML client config file")
	rootCmd.PersistentFlags().Duration("timeout", ledgersdk.DefaultRequestTimeout, "per-request retry budget")
	rootCmd.AddCommand(transferCmd())
	rootCmd.AddCommand(balanceCmd())
	rootCmd.AddCommand(receiptCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func clientFromFlags(cmd *cobra.Command) (*ledgersdk.Client, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return nil, fmt.Errorf("ledgerctl: --config is required")
	}
	cfg, err := ledgersdk.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ledgersdk.ClientFromConfig(cfg)
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return context.WithTimeout(context.Background(), timeout)
}

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "submit an hbar-equivalent transfer and print the accepting node and transaction ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			defer client.Close(context.Background())

			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			amount, _ := cmd.Flags().GetInt64("amount")

			fromID, err := ledgersdk.ParseAccountID(from)
			if err != nil {
				return err
			}
			toID, err := ledgersdk.ParseAccountID(to)
			if err != nil {
				return err
			}

			tx := ledgersdk.NewTransferTransaction().
				AddHbarTransfer(fromID, -amount).
				AddHbarTransfer(toID, amount)
			if err := tx.FreezeWith(client); err != nil {
				return err
			}

			ctx, cancel := withTimeout(cmd)
			defer cancel()
			result, err := client.Execute(ctx, tx)
			if err != nil {
				return err
			}
			resp := result.(ledgersdk.TransactionResponse)
			fmt.Printf("node %s transaction %s\n", resp.NodeID, resp.TransactionID)
			return nil
		},
	}
	cmd.Flags().String("from", "", "payer account ID (shard.realm.num)")
	cmd.Flags().String("to", "", "recipient account ID (shard.realm.num)")
	cmd.Flags().Int64("amount", 0, "tinybar-equivalent amount to move")
	return cmd
}

func balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance [accountId]",
		Short: "query an account's current balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			defer client.Close(context.Background())

			id, err := ledgersdk.ParseAccountID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			result, err := client.Execute(ctx, ledgersdk.NewAccountBalanceQuery().SetAccountID(id))
			if err != nil {
				return err
			}
			bal := result.(ledgersdk.AccountBalance)
			fmt.Printf("%s: %d\n", bal.AccountID, bal.Balance)
			return nil
		},
	}
	return cmd
}

func receiptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt [transactionId]",
		Short: "poll a transaction's receipt until it reaches a terminal status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := clientFromFlags(cmd)
			if err != nil {
				return err
			}
			defer client.Close(context.Background())

			txID, err := ledgersdk.ParseTransactionID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := withTimeout(cmd)
			defer cancel()
			result, err := client.Execute(ctx, ledgersdk.NewTransactionReceiptQuery().SetTransactionID(txID))
			if err != nil {
				return err
			}
			receipt := result.(ledgersdk.TransactionReceipt)
			fmt.Printf("status: %d\n", receipt.Status)
			return nil
		},
	}
	return cmd
}
