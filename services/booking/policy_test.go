package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(t *testing.T, now time.Time) Policy {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kuwait")
	require.NoError(t, err)
	return Policy{
		DefaultMinNoticeHours: 2,
		DefaultMaxAdvanceDays: 90,
		Location:              loc,
		Now:                   func() time.Time { return now },
	}
}

func TestCheckNotice(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kuwait")
	// 08:00 on the booking day.
	now := time.Date(2025, 11, 3, 8, 0, 0, 0, loc)
	p := testPolicy(t, now)
	provider := testProvider()

	// 11:00 start, 3h away: fine with 2h notice.
	assert.NoError(t, p.CheckNotice(provider, monday, 660))

	// 09:00 start, 1h away: too late to create or cancel.
	err := p.CheckNotice(provider, monday, 540)
	var perr *PolicyError
	assert.ErrorAs(t, err, &perr)

	// Exactly at the notice boundary still passes.
	assert.NoError(t, p.CheckNotice(provider, monday, 600))
}

func TestCheckNoticeProviderOverride(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kuwait")
	now := time.Date(2025, 11, 3, 8, 0, 0, 0, loc)
	p := testPolicy(t, now)

	provider := testProvider()
	strict := 24
	provider.MinNoticeHours = &strict

	// 3h ahead is fine by default but not under a 24h override.
	var perr *PolicyError
	assert.ErrorAs(t, p.CheckNotice(provider, monday, 660), &perr)

	relaxed := 0
	provider.MinNoticeHours = &relaxed
	assert.NoError(t, p.CheckNotice(provider, monday, 481), "zero notice allows near-immediate booking")
}

func TestCheckAdvance(t *testing.T) {
	loc, _ := time.LoadLocation("Asia/Kuwait")
	now := time.Date(2025, 11, 3, 8, 0, 0, 0, loc)
	p := testPolicy(t, now)
	provider := testProvider()

	assert.NoError(t, p.CheckAdvance(provider, monday))
	assert.NoError(t, p.CheckAdvance(provider, "2026-02-01"), "90 days out")

	var perr *PolicyError
	assert.ErrorAs(t, p.CheckAdvance(provider, "2026-02-02"), &perr, "91 days out")

	short := 7
	provider.MaxAdvanceDays = &short
	assert.NoError(t, p.CheckAdvance(provider, "2025-11-10"))
	assert.ErrorAs(t, p.CheckAdvance(provider, "2025-11-11"), &perr)
}

func TestStartAt(t *testing.T) {
	p := testPolicy(t, time.Now())

	start, err := p.StartAt(monday, 660)
	require.NoError(t, err)
	assert.Equal(t, 11, start.Hour())
	assert.Equal(t, "Asia/Kuwait", start.Location().String())

	_, err = p.StartAt("11/03/2025", 660)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
