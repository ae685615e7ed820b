package messages

import (
	"strings"
	"testing"
	"time"

	"github.com/korjavin/dinnerboard/pkg/board"
	"github.com/korjavin/dinnerboard/pkg/course"
	"github.com/korjavin/dinnerboard/pkg/kitchen"
	"github.com/korjavin/dinnerboard/pkg/models"
	"github.com/korjavin/dinnerboard/pkg/roomprefs"
)

type fixedNotes struct{}

func (fixedNotes) Speed(group, room string) roomprefs.Speed { return roomprefs.SpeedSlow }
func (fixedNotes) Memo(group, room string) string           { return "記念日" }

var sakura = models.RoomSlot{
	Name:      "さくら",
	Dinner:    "18:30",
	Guest:     3,
	Allergies: []models.Allergy{{Name: "えび", Targets: []string{"揚物"}}},
	Cake:      true,
}

func TestRoomView(t *testing.T) {
	now := time.Date(2026, 10, 19, 18, 45, 0, 0, time.Local)
	rules := []models.ExtraDish{{Name: "茶碗蒸し", Position: "煮物の前", Rooms: []string{"さくら"}}}

	b := board.New()
	cell := func(col int) board.Cell { return board.Cell{Group: "18:30", Room: "さくら", Col: col} }
	b.SetStatus(cell(0), board.StatusServed)
	b.SetStaff(cell(0), "ミン")
	b.SetStatus(cell(5), board.StatusMeatFired)
	b.SetWaitTime(cell(5), board.Minutes(10))
	b.SetWelldone(cell(5), 2)

	got := RoomView(sakura, rules, b, fixedNotes{}, now)
	lines := strings.Split(got, "\n")

	for _, want := range []string{
		"🏮 18:30 さくら（3名） 🎂",
		"速度: S (遅い)",
		"📝 記念日",
		"1. 吸物 [済] 👤ミン",
		"4. 揚物 [未] ⚠️えびNG",
		"5. 茶碗蒸し [未] ＋追加",
		"6. 煮物 [肉] ⏱18:55 W×2名",
	} {
		found := false
		for _, l := range lines {
			if l == want {
				found = true
			}
		}
		if !found {
			t.Errorf("RoomView() missing line %q in:\n%s", want, got)
		}
	}
}

func TestOverview(t *testing.T) {
	r := models.Roster{Rooms: []models.RoomSlot{
		{Name: "ふじ", Dinner: "19:00"},
		sakura,
		{Name: "はなれ", Dinner: "20:00"},
	}}
	b := board.New()
	b.SetStatus(board.Cell{Group: "18:30", Room: "さくら", Col: 0}, board.StatusServed)

	got := Overview(r, nil, b)
	iSakura := strings.Index(got, "さくら 1/7済 次: 刺身")
	iFuji := strings.Index(got, "ふじ 0/7済 次: 吸物")
	iHanare := strings.Index(got, "⏰ 20:00")
	if iSakura < 0 || iFuji < 0 || iHanare < 0 {
		t.Fatalf("Overview() =\n%s", got)
	}
	if !(iSakura < iFuji && iFuji < iHanare) {
		t.Errorf("groups out of order:\n%s", got)
	}

	if got := Overview(models.Roster{}, nil, b); !strings.Contains(got, "/import") {
		t.Errorf("empty Overview() = %q", got)
	}
}

func TestKitchen(t *testing.T) {
	res := kitchen.Result{Buckets: []kitchen.Bucket{{
		Dish:          "煮物",
		Reading:       "にもの",
		State:         board.StatusOrdered,
		TotalGuests:   5,
		TotalWelldone: 1,
		Rooms: []kitchen.RoomEntry{
			{Group: "18:30", Name: "さくら", Guests: 3, Welldone: 1},
			{Group: "19:00", Name: "ふじ", Guests: 2},
		},
	}}}

	want := "🔥 調理中\n\n【煮物】（にもの） 計5名 W×1名\n  ・18:30 さくら 3名 W×1\n  ・19:00 ふじ 2名"
	if got := Kitchen(res); got != want {
		t.Errorf("Kitchen() =\n%s\nwant\n%s", got, want)
	}
	if got := Kitchen(kitchen.Result{}); !strings.Contains(got, "ありません") {
		t.Errorf("empty Kitchen() = %q", got)
	}
}

func TestPrompt(t *testing.T) {
	p := course.Prompt{
		Kind: course.PromptStaff,
		Cell: board.Cell{Group: "18:00", Room: "つばき", Col: 2},
		Dish: "蒸物",
	}
	if got := Prompt(p); !strings.Contains(got, "スタッフが登録されていません") {
		t.Errorf("Prompt() = %q", got)
	}
	p.Kind = course.PromptWaitTime
	p.Reselect = true
	if got := Prompt(p); !strings.HasPrefix(got, "⏱ 18:00 つばき 蒸物") || !strings.Contains(got, "選び直して") {
		t.Errorf("Prompt() = %q", got)
	}
}

func TestLegend(t *testing.T) {
	got := Legend()
	for _, want := range []string{
		"通常: 未→待→注→済",
		"煮物・ステーキ: 未→肉→待→注→済",
		"果菜盛・しゃぶしゃぶ: 未→待→済",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Legend() missing %q:\n%s", want, got)
		}
	}
}
