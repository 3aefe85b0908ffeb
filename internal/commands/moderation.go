package commands

import (
	"errors"
	"strings"

	"github.com/aaronzipp/wolfden/internal/apperr"
	"github.com/aaronzipp/wolfden/internal/persist"
	"github.com/aaronzipp/wolfden/internal/render"
)

func removePlayer(c *Call) error {
	s, err := c.Session()
	if err != nil {
		return err
	}
	p, err := c.Target(s)
	if err != nil {
		return err
	}
	return s.ForceRemove(p.ID, "removed by a moderator", c.Now)
}

func abort(c *Call) error {
	if s := c.Slot.Session(); s != nil {
		return s.Abort("stopped by a moderator", c.Now)
	}
	if ros := c.Slot.Roster(); ros != nil {
		c.Slot.Release()
		c.Announce("The signup list has been cleared.")
		return nil
	}
	return apperr.New(apperr.CodeNoSession, "There is nothing to abort here.")
}

// resume reloads the channel's saved game, e.g. one that was skipped at
// startup because its players were still seated elsewhere.
func resume(c *Call) error {
	if c.Slot.Session() != nil {
		return apperr.New(apperr.CodeChannelBusy, "A game is already running in this channel.")
	}
	if ros := c.Slot.Roster(); ros != nil && ros.Len() > 0 {
		return apperr.New(apperr.CodeChannelBusy, "Clear the signups with "+c.router.settings.Prefix+"abort first.")
	}
	if c.router.Snapshots == nil {
		return apperr.New(apperr.CodeNoSession, "Saved games are not kept on this server.")
	}
	rec, err := c.router.Snapshots.Load(c.Ctx, c.Slot.Channel())
	if errors.Is(err, persist.ErrNotFound) {
		return apperr.New(apperr.CodeNoSession, "There is no saved game for this channel.")
	}
	if err != nil {
		return err
	}
	session, err := c.router.decodeSession(rec)
	if errors.Is(err, errSessionOver) {
		c.router.deleteSnapshot(c.Ctx, rec.Channel)
		return apperr.New(apperr.CodeNoSession, "The saved game for this channel is already over.")
	}
	if err != nil {
		return apperr.Wrap(apperr.CodeCorruptSnapshot, "The saved game for this channel cannot be loaded.", err)
	}
	if err := c.Slot.Adopt(session); err != nil {
		return err
	}
	for _, p := range session.Living() {
		c.markActive(p.ID)
	}
	c.Announce("The saved game has been resumed.\n" +
		render.Status(session.Phase(), session.Cycle(), session.Deadline(), session.Living(), c.Now))
	return nil
}

func help(c *Call) error {
	prefix := c.router.settings.Prefix
	if len(c.Args) > 0 {
		name := strings.ToLower(strings.TrimPrefix(c.Args[0], prefix))
		cmd, ok := c.router.table[name]
		if !ok {
			return apperr.New(apperr.CodeInvalidArgument, "No command called "+prefix+name+".")
		}
		text := c.router.usage(cmd)
		if len(cmd.Aliases) > 0 {
			text += "\nAliases: " + prefix + strings.Join(cmd.Aliases, ", "+prefix)
		}
		c.Reply(text)
		return nil
	}

	var b strings.Builder
	b.WriteString("Commands:")
	for _, cmd := range c.router.commands {
		b.WriteString("\n")
		b.WriteString(prefix)
		b.WriteString(cmd.Usage)
		b.WriteString(" - ")
		b.WriteString(cmd.Help)
	}
	c.Reply(b.String())
	return nil
}
