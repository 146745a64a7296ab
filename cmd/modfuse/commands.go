package modfuse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"modfuse/internal/version"
	"modfuse/pkg/conflicts"
	"modfuse/pkg/core"
	"modfuse/pkg/errors"
	"modfuse/pkg/filesystem"
	"modfuse/pkg/logging"
	"modfuse/pkg/paths"
	"modfuse/pkg/priority"
	"modfuse/pkg/staging"
	"modfuse/pkg/types"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	var (
		verbosity int
		dryRun    bool
	)

	rootCmd := &cobra.Command{
		Use:   "modfuse",
		Short: MsgRootShort,
		Long: `modfuse merges staged mod packages into a target installation. It
detects file-level conflicts between mods, resolves them by persisted
priorities and strategies, and applies the winning files in one
reversible transaction.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand was provided: show help but fail.
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.AddCommand(newDetectCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newPriorityCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// deps bundles the collaborators every command builds the same way.
type deps struct {
	paths    paths.Paths
	fs       *filesystem.OS
	service  *priority.Service
	provider *staging.Provider
}

func initDeps(stagingDir string) deps {
	p := paths.New()
	if stagingDir == "" {
		stagingDir = p.StagingDir()
	}
	fs := filesystem.NewOS()
	return deps{
		paths:    p,
		fs:       fs,
		service:  priority.NewService(p),
		provider: staging.NewProvider(fs, stagingDir),
	}
}

func newDetectCmd() *cobra.Command {
	var (
		contextKey string
		stagingDir string
	)

	cmd := &cobra.Command{
		Use:     "detect",
		Short:   MsgDetectShort,
		GroupID: "core",
		Example: `  # Detect conflicts between all staged mods
  modfuse detect

  # Detect for a specific install context
  modfuse detect --context skyrim-main`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := initDeps(stagingDir)

			sources, err := d.provider.Sources()
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoSources)
				return nil
			}

			ordered, err := d.service.ApplyPriorities(sources, contextKey)
			if err != nil {
				return err
			}

			detection, err := conflicts.NewDetector().Detect(cmd.Context(), ordered)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(detection.Malformed) > 0 {
				printMalformed(out, detection.Malformed)
			}
			if len(detection.Conflicts) == 0 {
				fmt.Fprintln(out, MsgNoConflicts)
				return nil
			}
			printConflicts(out, detection.Conflicts)
			return nil
		},
	}

	cmd.Flags().StringVar(&contextKey, "context", "default", MsgFlagContext)
	cmd.Flags().StringVar(&stagingDir, "staging", "", MsgFlagStaging)
	return cmd
}

func newMergeCmd() *cobra.Command {
	var (
		contextKey string
		stagingDir string
		winners    []string
	)

	cmd := &cobra.Command{
		Use:     "merge <target-dir>",
		Short:   MsgMergeShort,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		Example: `  # Merge staged mods into the game directory
  modfuse merge ~/games/skyrim/Data

  # Preview without writing
  modfuse merge --dry-run ~/games/skyrim/Data

  # Decide a flagged conflict and merge
  modfuse merge --winner storm+clearsky=clearsky ~/games/skyrim/Data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.merge")
			target := args[0]
			dryRun, _ := cmd.Root().PersistentFlags().GetBool("dry-run")

			logger.Info().
				Str("target", target).
				Str("context", contextKey).
				Bool("dryRun", dryRun).
				Msg("Merging staged mods")

			d := initDeps(stagingDir)
			out := cmd.OutOrStdout()

			m := core.NewMerger(core.Config{
				FS:         d.fs,
				Provider:   d.provider,
				Priorities: d.service,
				TargetDir:  target,
				BackupDir:  d.paths.BackupsDir(),
				DryRun:     dryRun,
				Progress: types.ProgressFunc(func(index, total int, desc string) {
					fmt.Fprintf(out, "  [%d/%d] %s\n", index+1, total, desc)
				}),
			})

			ctx := cmd.Context()
			result, err := m.Run(ctx, contextKey)
			if err != nil {
				return err
			}

			if len(result.NeedsDecision) > 0 {
				chosen, err := parseWinners(winners)
				if err != nil {
					return err
				}
				for _, c := range result.NeedsDecision {
					sourceID, ok := chosen[c.ID]
					if !ok {
						continue
					}
					option := c.OptionForSource(sourceID)
					if option == nil {
						return errors.Newf(errors.ErrInvalidInput,
							"conflict %s offers no option for source %s", c.ID, sourceID).
							WithDetail("conflict", c.ID)
					}
					outcome, err := m.Resolver().ApplyUserChoice(ctx, c, *option)
					if err != nil {
						return err
					}
					if !outcome.Success {
						return errors.New(errors.ErrNoWinner, outcome.Message).
							WithDetail("conflict", c.ID)
					}
				}
				result, err = m.Apply(ctx, contextKey, result)
				if err != nil {
					return err
				}
			}

			if len(result.Malformed) > 0 {
				printMalformed(out, result.Malformed)
			}

			if len(result.NeedsDecision) > 0 {
				fmt.Fprintf(out, MsgNeedsDecision, len(result.NeedsDecision))
				printConflicts(out, result.NeedsDecision)
				fmt.Fprint(out, MsgDecisionHint)
				return nil
			}

			printResolutions(out, result.Resolutions)
			switch {
			case result.Applied:
				fmt.Fprintf(out, MsgMergeApplied, result.PlannedOps)
			case dryRun:
				fmt.Fprintf(out, MsgMergePlanned, result.PlannedOps)
				fmt.Fprintln(out, MsgDryRunNotice)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contextKey, "context", "default", MsgFlagContext)
	cmd.Flags().StringVar(&stagingDir, "staging", "", MsgFlagStaging)
	cmd.Flags().StringArrayVar(&winners, "winner", nil, MsgFlagWinner)
	return cmd
}

// parseWinners parses repeated conflict-id=source-id decisions.
func parseWinners(specs []string) (map[string]string, error) {
	chosen := make(map[string]string, len(specs))
	for _, spec := range specs {
		id, source, ok := strings.Cut(spec, "=")
		if !ok || id == "" || source == "" {
			return nil, errors.New(errors.ErrInvalidInput,
				"winner must be conflict-id=source-id").
				WithDetail("value", spec)
		}
		chosen[id] = source
	}
	return chosen, nil
}

func newPriorityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "priority",
		Short:   MsgPriorityShort,
		GroupID: "core",
	}
	cmd.AddCommand(newPriorityListCmd())
	cmd.AddCommand(newPrioritySetCmd())
	cmd.AddCommand(newPriorityLockCmd(true))
	cmd.AddCommand(newPriorityLockCmd(false))
	return cmd
}

func newPriorityListCmd() *cobra.Command {
	var contextKey string

	cmd := &cobra.Command{
		Use:   "list",
		Short: MsgListShort,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := initDeps("")

			cfg, err := d.service.Load(contextKey)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(cfg.Entries) == 0 {
				fmt.Fprintln(out, MsgNoPriorities)
				return nil
			}

			entries := append([]priority.Entry(nil), cfg.Entries...)
			sort.Slice(entries, func(i, j int) bool {
				if entries[i].Priority != entries[j].Priority {
					return entries[i].Priority < entries[j].Priority
				}
				return entries[i].ModID < entries[j].ModID
			})
			for _, e := range entries {
				fmt.Fprintf(out, "%4d  %s", e.Priority, e.ModID)
				if e.ModName != "" && e.ModName != e.ModID {
					fmt.Fprintf(out, "  (%s)", e.ModName)
				}
				if e.Category != "" {
					fmt.Fprintf(out, "  [%s]", e.Category)
				}
				if e.Locked {
					fmt.Fprint(out, "  locked")
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&contextKey, "context", "default", MsgFlagContext)
	return cmd
}

func newPrioritySetCmd() *cobra.Command {
	var (
		contextKey string
		name       string
		category   string
	)

	cmd := &cobra.Command{
		Use:   "set <mod-id> <priority>",
		Short: MsgSetShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.New(errors.ErrInvalidInput, "priority must be an integer").
					WithDetail("value", args[1])
			}

			d := initDeps("")
			if name == "" {
				name = args[0]
			}
			if err := d.service.SetPriority(contextKey, args[0], name, category, value); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), MsgPrioritySet, args[0], value, contextKey)
			return nil
		},
	}

	cmd.Flags().StringVar(&contextKey, "context", "default", MsgFlagContext)
	cmd.Flags().StringVar(&name, "name", "", "Display name stored with the entry")
	cmd.Flags().StringVar(&category, "category", "", "Category stored with the entry")
	return cmd
}

func newPriorityLockCmd(lock bool) *cobra.Command {
	var contextKey string

	use, short, done := "lock <mod-id>", MsgLockShort, MsgPriorityLocked
	if !lock {
		use, short, done = "unlock <mod-id>", MsgUnlockShort, MsgPriorityUnlocked
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := initDeps("")
			if err := d.service.SetLocked(contextKey, args[0], lock); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), done, args[0], contextKey)
			return nil
		},
	}

	cmd.Flags().StringVar(&contextKey, "context", "default", MsgFlagContext)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "modfuse version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `To load completions:

Bash:
  $ source <(modfuse completion bash)

Zsh:
  $ modfuse completion zsh > "${fpath[1]}/_modfuse"

Fish:
  $ modfuse completion fish | source

PowerShell:
  PS> modfuse completion powershell | Out-String | Invoke-Expression
`,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Run: func(cmd *cobra.Command, args []string) {
			switch args[0] {
			case "bash":
				if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
					log.Error().Err(err).Msg("Failed to generate bash completion")
				}
			case "zsh":
				if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
					log.Error().Err(err).Msg("Failed to generate zsh completion")
				}
			case "fish":
				if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
					log.Error().Err(err).Msg("Failed to generate fish completion")
				}
			case "powershell":
				if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
					log.Error().Err(err).Msg("Failed to generate powershell completion")
				}
			}
		},
	}
}
