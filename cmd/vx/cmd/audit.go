package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skdas20/VaultX/internal/vault"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit the vault for security issues",
	Long: `Classify every secret as expired, expiring soon, long-lived, or
healthy, and flag sensitive-looking keys without a TTL. Expired secrets
are removed as part of the audit.`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAudit(_ *cobra.Command, _ []string) error {
	engine := newEngine()

	return runWithPassphrase(func(passphrase []byte) error {
		report, err := engine.Audit(passphrase)
		if err != nil {
			return err
		}

		fmt.Printf("%s\n\n", Bold("=== VaultX Security Audit ==="))

		for _, entry := range report.Entries {
			switch entry.Status {
			case vault.AuditExpired:
				Warning("[EXPIRED] %s/%s - removed", entry.Project, entry.Key)
			case vault.AuditExpiringSoon:
				Warning("[EXPIRING-SOON] %s/%s - expires within 24 hours", entry.Project, entry.Key)
			case vault.AuditLongLived:
				Warning("[LONG-LIVED] %s/%s - %d days old (consider rotation)", entry.Project, entry.Key, entry.AgeDays)
			}
			if entry.HighRisk {
				Warning("[HIGH-RISK] %s/%s - sensitive secret without TTL", entry.Project, entry.Key)
			}
		}

		fmt.Printf("\n%s\n", Bold("=== Summary ==="))
		fmt.Printf("Total secrets: %d\n", report.TotalSecrets)
		fmt.Printf("Expired (removed): %d\n", report.Expired)
		fmt.Printf("Expiring within 24h: %d\n", report.ExpiringSoon)
		fmt.Printf("Long-lived (>90 days): %d\n", report.LongLived)
		fmt.Printf("High-risk without TTL: %d\n", report.HighRisk)

		issues := report.Expired + report.ExpiringSoon + report.LongLived + report.HighRisk
		if issues == 0 {
			Success("No security issues found.")
		} else {
			Warning("%d issue(s) found. Review and remediate.", issues)
		}
		return nil
	})
}
