package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"CrossPay/internal/model"
)

// UserSummary is one line of the daily summary.
type UserSummary struct {
	UserID   string
	Snapshot model.Snapshot
}

// Conversion is an amount moved out of pending for one user during a tick.
type Conversion struct {
	UserID string
	Amount float64
}

// Money renders an amount with two decimals.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func rate(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}

// FormatState formats a user's settings and balances.
func FormatState(userID string, s model.Settings, snap model.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 <b>%s</b>\n\n", userID)
	fmt.Fprintf(&b, "Instant: %s\n", Money(snap.InstantAvailable))
	fmt.Fprintf(&b, "Pending: %s\n", Money(snap.OptimisedPending))
	fmt.Fprintf(&b, "Rent / Savings / Investing: %s / %s / %s\n",
		Money(snap.RentBucket), Money(snap.SavingsBucket), Money(snap.InvestingBucket))
	fmt.Fprintf(&b, "Salary received: %s\n", Money(snap.TotalSalaryReceived))
	fmt.Fprintf(&b, "Extra vs instant: %s\n", Money(snap.ExtraGainedVsInstant))
	if snap.BaselineFxRate > 0 {
		fmt.Fprintf(&b, "Baseline rate: %s\n", rate(snap.BaselineFxRate))
	}
	fmt.Fprintf(&b, "\nInstant share %.0f%% | max wait %s\n",
		s.InstantPercent*100, time.Duration(s.MaxWaitSeconds)*time.Second)
	return b.String()
}

// FormatResult formats the outcome of a routing operation.
func FormatResult(userID, action string, r model.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💱 <b>%s</b> | %s\n\n", action, userID)
	if r.Deposited > 0 {
		fmt.Fprintf(&b, "Deposited: %s\n", Money(r.Deposited))
	}
	fmt.Fprintf(&b, "Converted: %s\n", Money(r.ConvertedThisRun))
	fmt.Fprintf(&b, "Instant: %s | Pending: %s\n", Money(r.InstantAvailable), Money(r.OptimisedPending))
	fmt.Fprintf(&b, "Extra vs instant: %s\n", Money(r.ExtraGainedVsInstant))
	return b.String()
}

// FormatConversions formats the conversions made by a scheduled tick.
func FormatConversions(sig *model.ConditionSignal, fxRate float64, conv []Conversion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⏱ <b>Optimisation tick</b> | %s @ %s\n\n", sig.Condition, rate(fxRate))
	total := decimal.Zero
	for _, c := range conv {
		amt := decimal.NewFromFloat(c.Amount)
		total = total.Add(amt)
		fmt.Fprintf(&b, "  %s: %s\n", c.UserID, amt.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total converted: %s\n", total.StringFixed(2))
	return b.String()
}

// FormatSignal formats the market classifier output.
func FormatSignal(sig *model.ConditionSignal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 <b>Market: %s</b> (score %+.3f)\n", sig.Condition, sig.TotalScore)
	ind := sig.Indicators
	if ind.Samples > 0 {
		fmt.Fprintf(&b, "Rate %s | SMA%d %s | SMA%d %s | RSI %.0f\n",
			rate(ind.CurrentRate), 5, rate(ind.SMAShort), 20, rate(ind.SMALong), ind.RSI)
	}
	for _, f := range sig.Factors {
		fmt.Fprintf(&b, "  %s(%s): %+.0f ×%.2f = %+.3f\n",
			f.Name, f.Commentary, f.RawScore, f.Weight, f.Weighted)
	}
	return b.String()
}

// FormatSummary formats the daily summary across all users.
func FormatSummary(at time.Time, users []UserSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 <b>Daily summary</b> | %s\n\n", at.Format("2006-01-02"))
	if len(users) == 0 {
		b.WriteString("No accounts yet.")
		return b.String()
	}
	pending, gained := decimal.Zero, decimal.Zero
	for _, u := range users {
		fmt.Fprintf(&b, "%s: instant %s, pending %s, extra %s\n", u.UserID,
			Money(u.Snapshot.InstantAvailable), Money(u.Snapshot.OptimisedPending),
			Money(u.Snapshot.ExtraGainedVsInstant))
		pending = pending.Add(decimal.NewFromFloat(u.Snapshot.OptimisedPending))
		gained = gained.Add(decimal.NewFromFloat(u.Snapshot.ExtraGainedVsInstant))
	}
	fmt.Fprintf(&b, "\nTotal pending: %s | Total extra: %s", pending.StringFixed(2), gained.StringFixed(2))
	return b.String()
}

// FormatHelp lists the bot commands.
func FormatHelp() string {
	return "Commands:\n• /users\n• /state &lt;user&gt;\n• /convert &lt;user&gt;\n• /market"
}
