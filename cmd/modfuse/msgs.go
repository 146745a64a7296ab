package modfuse

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort     = "A conflict-aware mod merger"
	MsgVersionShort  = "Print version information"
	MsgDetectShort   = "Detect conflicts between staged mods"
	MsgMergeShort    = "Merge staged mods into a target directory"
	MsgPriorityShort = "Manage per-context mod priorities"
	MsgListShort     = "List persisted priorities for a context"
	MsgSetShort      = "Set a mod's priority for a context"
	MsgLockShort     = "Lock a mod's priority against further changes"
	MsgUnlockShort   = "Unlock a mod's priority"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun  = "Preview changes without executing them"
	MsgFlagContext = "Target context the priorities and mods belong to"
	MsgFlagStaging = "Staging directory holding the mod payloads"
	MsgFlagTarget  = "Target directory the merge writes into"
	MsgFlagWinner  = "Decide a flagged conflict as conflict-id=source-id (repeatable)"

	// Status messages
	MsgNoSources        = "No staged mods found."
	MsgNoConflicts      = "No conflicts detected."
	MsgDryRunNotice     = "\nDRY RUN MODE - No changes were made"
	MsgMergeApplied     = "\nMerge applied: %d files written.\n"
	MsgMergePlanned     = "\nMerge planned: %d files would be written.\n"
	MsgNeedsDecision    = "\n%d conflict(s) need a decision before the merge can apply:\n"
	MsgDecisionHint     = "\nRe-run with --winner conflict-id=source-id to decide them.\n"
	MsgMalformedNotice  = "\nSkipped %d malformed source(s):\n"
	MsgPrioritySet      = "Priority of %s set to %d for context %s\n"
	MsgPriorityLocked   = "Priority of %s locked for context %s\n"
	MsgPriorityUnlocked = "Priority of %s unlocked for context %s\n"
	MsgNoPriorities     = "No priorities persisted for this context."
	MsgFallbackNotice   = "  note: %s\n"
	MsgConflictsHeading = "Conflicts"
)
