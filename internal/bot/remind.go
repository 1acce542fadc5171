package bot

import (
	"context"
	"errors"
	"strings"

	"vaultbot/internal/gateway"
	"vaultbot/internal/reminder"
)

// cmdRemind handles "/remind", "/remind off", "/remind on" and
// "/remind HH:MM".
func (b *Bot) cmdRemind(ctx context.Context, u gateway.Update) error {
	if b.reminders == nil {
		return b.reply(ctx, u, b.tr.T("remind.no_recipients"))
	}
	st := b.reminders.Settings()
	tz := "UTC"
	if st.Location != nil {
		tz = st.Location.String()
	}

	if len(u.Args) == 0 {
		state := b.tr.T("remind.state.off")
		if b.reminders.Active() {
			state = b.tr.T("remind.state.on")
		}
		return b.reply(ctx, u, b.tr.T("remind.status", state, st.Hour, st.Minute, tz))
	}

	arg := strings.ToLower(u.Args[0])
	switch arg {
	case "off":
		b.reminders.Disable(ctx)
		return b.reply(ctx, u, b.tr.T("remind.off"))
	case "on":
		if err := b.reminders.Enable(ctx); err != nil {
			return b.reminderError(ctx, u, err)
		}
		st = b.reminders.Settings()
		return b.reply(ctx, u, b.tr.T("remind.on", st.Hour, st.Minute))
	}

	hour, minute, ok := reminder.ParseClock(arg)
	if !ok {
		return b.reply(ctx, u, b.tr.T("remind.bad_format"))
	}
	if err := b.reminders.SetTime(ctx, hour, minute); err != nil {
		return b.reminderError(ctx, u, err)
	}
	return b.reply(ctx, u, b.tr.T("remind.set", hour, minute, tz))
}

func (b *Bot) reminderError(ctx context.Context, u gateway.Update, err error) error {
	if errors.Is(err, reminder.ErrNoRecipients) {
		return b.reply(ctx, u, b.tr.T("remind.no_recipients"))
	}
	return err
}
