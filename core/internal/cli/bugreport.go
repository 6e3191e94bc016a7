package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"slimdiag/core/internal/bugreport"
	ievidence "slimdiag/core/internal/evidence"
	"slimdiag/core/internal/notify"
	"slimdiag/privileged"
)

func NewBugreportCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "bugreport",
		Short: "Capture device logs and bundle them into bugreport.zip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, map[string]string{
				"bugreport.storage_root":    "storage-root",
				"bugreport.dir_name":        "dir-name",
				"bugreport.capture_timeout": "capture-timeout",
				"bugreport.prune_captures":  "prune-captures",
				"privileged.mode":           "mode",
				"privileged.su_path":        "su-path",
				"privileged.require_root":   "require-root",
			})
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			exec, err := privileged.New(cfg.Privileged.Mode, cfg.Privileged.SuPath, cfg.Privileged.RequireRoot)
			if err != nil {
				return err
			}
			timeout, err := cfg.BugReport.Timeout()
			if err != nil {
				return err
			}

			collector := bugreport.New(bugreport.Options{
				OutputDir:      bugreport.OutputDir(cfg.BugReport.StorageRoot, cfg.BugReport.DirName),
				Executor:       exec,
				CaptureTimeout: timeout,
				PruneCaptures:  cfg.BugReport.PruneCaptures,
				Logger:         logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rep, err := bugreport.NewRunner(collector).Run(ctx, notify.NewTerminal(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			if jsonOut {
				if err := ievidence.WriteManifest(cmd.OutOrStdout(), rep.Manifest()); err != nil {
					return err
				}
			}
			return rep.Err
		},
	}

	cmd.Flags().String("storage-root", "", "External storage root (default: $EXTERNAL_STORAGE or /sdcard)")
	cmd.Flags().String("dir-name", bugreport.DefaultDirName, "Output directory name under the storage root")
	cmd.Flags().String("capture-timeout", bugreport.DefaultCaptureTimeout.String(), "Per-source capture timeout")
	cmd.Flags().Bool("prune-captures", false, "Remove capture files after the bundle is written")
	cmd.Flags().String("mode", privileged.ModeSu, "Privileged access mode (su|shell)")
	cmd.Flags().String("su-path", "su", "Path to the su binary (mode=su)")
	cmd.Flags().Bool("require-root", true, "Require euid 0 (mode=shell)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run manifest as JSON")
	return cmd
}
