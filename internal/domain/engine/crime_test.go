package engine

import (
	"testing"
	"time"
)

func TestFixedPolicyPickpocketAtBoundary(t *testing.T) {
	// a draw of exactly 100 still succeeds against a 100% crime
	e := newTestEngine(&scriptedRNG{floats: []float64{1.0}, ints: []int{0}})
	p := newTestPlayer("a")

	res, err := e.CommitCrime(p, 0, nil, testNow)
	if err != nil {
		t.Fatalf("CommitCrime() error = %v", err)
	}
	if !res.Outcome.Success || res.Outcome.Roll != 100 {
		t.Fatalf("outcome = %+v, want success at roll 100", res.Outcome)
	}
	if res.Player.Money != 10 || res.Player.Respect != 1 {
		t.Errorf("money/respect = %d/%d, want 10/1", res.Player.Money, res.Player.Respect)
	}
	if res.Player.Stats.CrimesAttempted != 1 || res.Player.Stats.CrimesSucceeded != 1 || res.Player.Stats.MoneyEarned != 10 {
		t.Errorf("stats = %+v", res.Player.Stats)
	}
	if res.Cooldown.ActionID != "crime:0" || !res.Cooldown.ExpiresAt.Equal(testNow.Add(30*time.Second)) {
		t.Errorf("cooldown = %+v", res.Cooldown)
	}
	if res.Attempt.Policy != PolicyFixed || !res.Attempt.Success || res.Attempt.PlayerID != "a" {
		t.Errorf("attempt = %+v", res.Attempt)
	}
	if p.Money != 0 {
		t.Error("input player was mutated")
	}
}

func TestFixedPolicyPickpocketAlwaysSucceeds(t *testing.T) {
	e := New(tableDefaults(), WithRNG(SeededRNG(42)))
	p := newTestPlayer("a")
	for i := 0; i < 500; i++ {
		res, err := e.CommitCrime(p, 0, nil, testNow)
		if err != nil {
			t.Fatalf("CommitCrime() error = %v", err)
		}
		if !res.Outcome.Success {
			t.Fatalf("pickpocket failed on draw %v", res.Outcome.Roll)
		}
		if res.Outcome.Money < 10 || res.Outcome.Money > 50 {
			t.Fatalf("payout %d outside [10, 50]", res.Outcome.Money)
		}
	}
}

func TestFixedPolicyFailureJails(t *testing.T) {
	e := newTestEngine(&scriptedRNG{floats: []float64{0.9}})
	p := newTestPlayer("a")
	p.Money = 300

	res, err := e.CommitCrime(p, 1, nil, testNow)
	if err != nil {
		t.Fatalf("CommitCrime() error = %v", err)
	}
	if res.Outcome.Success || !res.Outcome.Jailed {
		t.Fatalf("outcome = %+v, want jailed failure", res.Outcome)
	}
	if want := testNow.Add(90 * time.Second); res.Player.JailUntil == nil || !res.Player.JailUntil.Equal(want) {
		t.Errorf("JailUntil = %v, want %v", res.Player.JailUntil, want)
	}
	if res.Player.Money != 300 || res.Player.Stats.TimesJailed != 1 || res.Player.Stats.CrimesFailed != 1 {
		t.Errorf("player after failure = %+v", res.Player)
	}
	if !res.Cooldown.ExpiresAt.Equal(testNow.Add(90 * time.Second)) {
		t.Errorf("failed attempts still start the cooldown: %+v", res.Cooldown)
	}
}

func TestFixedPolicyDefaultJailTime(t *testing.T) {
	tb := tableDefaults()
	tb.Crimes[1].JailTime.Duration = 0
	e := New(tb, WithRNG(&scriptedRNG{floats: []float64{0.99}}), WithIDs(&seqIDs{}))
	res, err := e.CommitCrime(newTestPlayer("a"), 1, nil, testNow)
	if err != nil {
		t.Fatalf("CommitCrime() error = %v", err)
	}
	if want := testNow.Add(60 * time.Second); !res.Player.JailUntil.Equal(want) {
		t.Errorf("JailUntil = %v, want %v", res.Player.JailUntil, want)
	}
}

func TestFixedPolicyCarReward(t *testing.T) {
	// tier draw 61 lands in "uncommon", second pick is car 4
	e := newTestEngine(&scriptedRNG{floats: []float64{0.1}, ints: []int{60, 1}})
	p := newTestPlayer("a")
	p.Rank, p.Respect = 3, 600

	res, err := e.CommitCrime(p, 3, nil, testNow)
	if err != nil {
		t.Fatalf("CommitCrime() error = %v", err)
	}
	car := res.Outcome.Car
	if car == nil || car.CarType != 4 || car.Source != SourceCrime || car.Damage != 0 {
		t.Fatalf("car = %+v, want fresh Escalade from crime", car)
	}
	if len(res.Player.Cars) != 1 || res.Player.ActiveCar == nil || *res.Player.ActiveCar != car.ID {
		t.Errorf("car not added as active: %+v", res.Player)
	}
	if res.Player.Money != 0 || res.Outcome.Money != 0 {
		t.Errorf("car reward crimes pay no money, got %d", res.Player.Money)
	}
	if res.Attempt.CarType == nil || *res.Attempt.CarType != 4 {
		t.Errorf("attempt car type = %v", res.Attempt.CarType)
	}
}

func TestFixedPolicyKeepsExistingActiveCar(t *testing.T) {
	e := newTestEngine(&scriptedRNG{floats: []float64{0}, ints: []int{0, 0}})
	p := newTestPlayer("a")
	p.Rank, p.Respect = 3, 600
	p.Cars = []PlayerCar{{ID: "old", CarType: 1}}
	p.ActiveCar = ptr("old")

	res, err := e.CommitCrime(p, 3, nil, testNow)
	if err != nil {
		t.Fatalf("CommitCrime() error = %v", err)
	}
	if len(res.Player.Cars) != 2 || *res.Player.ActiveCar != "old" {
		t.Errorf("cars = %+v active = %v", res.Player.Cars, *res.Player.ActiveCar)
	}
}

func TestFixedPolicyWithholdsRespectAtMaxRank(t *testing.T) {
	e := newTestEngine(&scriptedRNG{floats: []float64{0}, ints: []int{40}})
	p := newTestPlayer("a")
	p.Rank, p.Respect = 8, 60000

	res, err := e.CommitCrime(p, 0, nil, testNow)
	if err != nil {
		t.Fatalf("CommitCrime() error = %v", err)
	}
	if res.Player.Respect != 60000 || res.Outcome.Respect != 0 {
		t.Errorf("respect = %d, want unchanged", res.Player.Respect)
	}
	if res.Player.Money != 50 {
		t.Errorf("money = %d, want 50", res.Player.Money)
	}
}

func TestRankUpAwardsBullets(t *testing.T) {
	e := newTestEngine(&scriptedRNG{floats: []float64{0}})
	p := newTestPlayer("a")
	p.Respect = 49

	res, err := e.CommitCrime(p, 0, nil, testNow)
	if err != nil {
		t.Fatalf("CommitCrime() error = %v", err)
	}
	if !res.Outcome.RankedUp || res.Player.Rank != 1 || res.Outcome.Rank != 1 {
		t.Fatalf("expected rank up to 1, got %+v", res.Outcome)
	}
	if res.Player.Bullets != 50 || res.Player.Stats.RankUps != 1 {
		t.Errorf("bullets = %d rankUps = %d", res.Player.Bullets, res.Player.Stats.RankUps)
	}
}

func TestCommitCrimeRejections(t *testing.T) {
	future := testNow.Add(2 * time.Minute)
	tests := []struct {
		name     string
		crimeID  int
		policy   CrimePolicy
		mutate   func(p *Player)
		cooldown *time.Time
		wantKind Kind
		reason   string
	}{
		{name: "unknown crime", crimeID: 99, wantKind: KindValidation},
		{name: "negative crime", crimeID: -1, wantKind: KindValidation},
		{name: "in jail", mutate: func(p *Player) { p.JailUntil = &future }, wantKind: KindPrecondition, reason: ReasonInJail},
		{name: "in hospital", mutate: func(p *Player) { p.HospitalUntil = &future }, wantKind: KindPrecondition, reason: ReasonInHospital},
		{name: "rank too low", crimeID: 2, wantKind: KindPrecondition},
		{name: "cooldown running", cooldown: &future, wantKind: KindPrecondition, reason: "crime on cooldown"},
		{
			name:     "not enough nerve",
			policy:   AugmentedPolicy{},
			mutate:   func(p *Player) { p.Nerve = 1 },
			wantKind: KindPrecondition,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.policy != nil {
				opts = append(opts, WithCrimePolicy(tt.policy))
			}
			e := newTestEngine(&scriptedRNG{floats: []float64{0, 0}}, opts...)
			p := newTestPlayer("a")
			if tt.mutate != nil {
				tt.mutate(&p)
			}
			_, err := e.CommitCrime(p, tt.crimeID, tt.cooldown, testNow)
			wantKind(t, err, tt.wantKind)
			if tt.reason != "" && err.(*Error).Reason != tt.reason {
				t.Errorf("reason = %q, want %q", err.(*Error).Reason, tt.reason)
			}
		})
	}
}

func TestFixedPolicyHospitalGateOptional(t *testing.T) {
	future := testNow.Add(time.Minute)
	e := newTestEngine(&scriptedRNG{floats: []float64{0}}, WithCrimePolicy(FixedRatePolicy{HospitalGate: false}))
	p := newTestPlayer("a")
	p.HospitalUntil = &future
	if _, err := e.CommitCrime(p, 0, nil, testNow); err != nil {
		t.Fatalf("hospital should not gate crimes: %v", err)
	}
}

func TestAugmentedChanceCapped(t *testing.T) {
	tb := tableDefaults()
	for _, crime := range tb.Crimes {
		for rank := 0; rank <= 20; rank++ {
			for nerve := int64(0); nerve <= 300; nerve += 25 {
				if c := AugmentedChance(tb, crime, rank, nerve); c > 95 {
					t.Fatalf("chance %v > 95 for crime %d rank %d nerve %d", c, crime.ID, rank, nerve)
				}
			}
		}
	}
	if c := AugmentedChance(tb, tb.Crimes[4], 3, 50); c != 20+6+5 {
		t.Errorf("AugmentedChance() = %v, want 31", c)
	}
}

func TestAugmentedPolicy(t *testing.T) {
	tests := []struct {
		name         string
		floats       []float64
		ints         []int
		success      bool
		jailFor      time.Duration
		hospitalFor  time.Duration
		wantMoney    int64
		wantTimesJ   int64
		wantTimesHos int64
	}{
		{name: "success", floats: []float64{0.5}, ints: []int{100}, success: true, wantMoney: 200},
		{name: "jail", floats: []float64{0.9, 0.1}, ints: []int{5}, jailFor: 65 * time.Second, wantTimesJ: 1},
		{name: "hospital", floats: []float64{0.9, 0.4}, ints: []int{0}, hospitalFor: 120 * time.Second, wantTimesHos: 1},
		{name: "plain failure", floats: []float64{0.9, 0.7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(&scriptedRNG{floats: tt.floats, ints: tt.ints}, WithCrimePolicy(AugmentedPolicy{}))
			p := newTestPlayer("a")

			res, err := e.CommitCrime(p, 1, nil, testNow)
			if err != nil {
				t.Fatalf("CommitCrime() error = %v", err)
			}
			if res.Outcome.Chance != 80 {
				t.Errorf("Chance = %v, want 80", res.Outcome.Chance)
			}
			if res.Outcome.Success != tt.success {
				t.Fatalf("Success = %v, want %v", res.Outcome.Success, tt.success)
			}
			if res.Player.Nerve != 95 || res.Outcome.NerveSpent != 5 {
				t.Errorf("nerve = %d, want 95", res.Player.Nerve)
			}
			if res.Player.Money != tt.wantMoney {
				t.Errorf("money = %d, want %d", res.Player.Money, tt.wantMoney)
			}
			checkTimer(t, "jail", res.Player.JailUntil, tt.jailFor)
			checkTimer(t, "hospital", res.Player.HospitalUntil, tt.hospitalFor)
			if res.Player.Stats.TimesJailed != tt.wantTimesJ || res.Player.Stats.TimesHospitalized != tt.wantTimesHos {
				t.Errorf("stats = %+v", res.Player.Stats)
			}
			if res.Attempt.Policy != PolicyAugmented {
				t.Errorf("attempt policy = %q", res.Attempt.Policy)
			}
		})
	}
}

func checkTimer(t *testing.T, name string, got *time.Time, want time.Duration) {
	t.Helper()
	if want == 0 {
		if got != nil {
			t.Errorf("%s timer = %v, want none", name, got)
		}
		return
	}
	if got == nil || !got.Equal(testNow.Add(want)) {
		t.Errorf("%s timer = %v, want now+%v", name, got, want)
	}
}

func TestPolicyByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"fixed", PolicyFixed, false},
		{"", PolicyFixed, false},
		{"augmented", PolicyAugmented, false},
		{"random", "", true},
	}
	for _, tt := range tests {
		p, err := PolicyByName(tt.name, true)
		if (err != nil) != tt.wantErr {
			t.Fatalf("PolicyByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err == nil && p.Name() != tt.want {
			t.Errorf("PolicyByName(%q) = %q, want %q", tt.name, p.Name(), tt.want)
		}
	}
}
