package commands

import (
	"fmt"

	"github.com/aaronzipp/wolfden/internal/game"
)

// Command describes one chat command.
type Command struct {
	Trigger   string
	Aliases   []string
	Usage     string
	Help      string
	Turn      bool // counts as activity for the inactivity watchdog
	Direct    bool // may be sent privately
	Moderator bool
	ReadOnly  bool // never changes state, so nothing is persisted
	Stateless bool // needs no channel state and runs without the channel lock
	Validate  func(args []string) error
	Execute   func(c *Call) error
}

func noArgs(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	return nil
}

func needTarget(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("who?")
	}
	return nil
}

func optionalVariant(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("pick at most one variant")
	}
	if len(args) == 1 {
		if _, ok := game.LookupVariant(args[0]); !ok {
			return fmt.Errorf("unknown variant %q", args[0])
		}
	}
	return nil
}

// DefaultCommands builds the standard command table.
func DefaultCommands() []*Command {
	return []*Command{
		{Trigger: "in", Aliases: []string{"join"}, Usage: "in", Help: "sign up for the next game",
			Validate: noArgs, Execute: signUp},
		{Trigger: "out", Aliases: []string{"leave"}, Usage: "out", Help: "withdraw your signup",
			Validate: noArgs, Execute: withdraw},
		{Trigger: "signups", Aliases: []string{"list"}, Usage: "signups", Help: "show who is signed up",
			ReadOnly: true, Validate: noArgs, Execute: listSignups},
		{Trigger: "start", Usage: "start [variant]", Help: "start the game with the current signups",
			Validate: optionalVariant, Execute: start},
		{Trigger: "vote", Aliases: []string{"lynch"}, Usage: "vote <player|none>", Help: "vote to lynch a player",
			Turn: true, Validate: needTarget, Execute: vote},
		{Trigger: "unvote", Usage: "unvote", Help: "take back your vote",
			Turn: true, Validate: noArgs, Execute: unvote},
		{Trigger: "act", Aliases: []string{"kill", "check", "protect"}, Usage: "act <player>",
			Help: "use your night action", Turn: true, Direct: true, Validate: needTarget, Execute: nightAction},
		{Trigger: "pass", Aliases: []string{"give"}, Usage: "pass <player> [item]", Help: "hand an item (your gun by default) to another player",
			Turn: true, Direct: true, Validate: needTarget, Execute: passItem},
		{Trigger: "shoot", Usage: "shoot <player>", Help: "fire your gun during the day",
			Turn: true, Direct: true, Validate: needTarget, Execute: shoot},
		{Trigger: "status", Usage: "status", Help: "show the phase and who is alive",
			Direct: true, ReadOnly: true, Validate: noArgs, Execute: status},
		{Trigger: "votecount", Aliases: []string{"vc"}, Usage: "votecount", Help: "show the current vote tally",
			Direct: true, ReadOnly: true, Validate: noArgs, Execute: voteCount},
		{Trigger: "items", Usage: "items", Help: "list what you carry",
			Direct: true, ReadOnly: true, Validate: noArgs, Execute: items},
		{Trigger: "rolepm", Aliases: []string{"role"}, Usage: "rolepm", Help: "send your role to you again",
			Direct: true, ReadOnly: true, Validate: noArgs, Execute: rolePM},
		{Trigger: "remove", Aliases: []string{"kick"}, Usage: "remove <player>", Help: "remove a player from the game",
			Moderator: true, Validate: needTarget, Execute: removePlayer},
		{Trigger: "abort", Usage: "abort", Help: "end the game or clear the signups",
			Moderator: true, Validate: noArgs, Execute: abort},
		{Trigger: "resume", Usage: "resume", Help: "reload the saved game of this channel",
			Moderator: true, Validate: noArgs, Execute: resume},
		{Trigger: "help", Aliases: []string{"commands"}, Usage: "help [command]", Help: "list commands",
			Direct: true, ReadOnly: true, Stateless: true, Execute: help},
	}
}
