package dataprocessing

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"classpulse/pkg/contracts/domain"
)

// SampleStream is the stream assigned to generated learners
const SampleStream = "8 Suswa"

// sampleIDBase is the first generated admission number
const sampleIDBase = 2026001

var sampleClassList = []string{
	"Adrian Nga'nga", "Agnes Wangui", "Alex Mwaura", "Angela Njeri", "Beatrice Nyambura",
	"Blessed Njoki", "Brassel Irungu", "Brian Muiruri", "Brendon Oteyo", "Cindy Njoki",
	"Daniel Kiarie", "David Ndegwa", "Dennis Kimeu", "Edwin Karanja", "Elizabeth Muthoni",
	"Emmanuel Bongera", "Emmanuel Karita", "Esther Nyambura", "Hope Nasimiyu", "Humphrey Njuguna",
	"Israel Jomo", "Jeff Mwangi", "Joan Nyambura", "Josphat Kariuki", "Julius Ikui",
	"Kelvin Mwangi", "Kelvin Ombongi", "Lewis Miring'u", "Lincon Okello", "Martin Ngarari",
	"Mary Wangui", "Michelle Wanjiku", "Melody Njoki", "Miriam Sarange", "Noel Vivian",
	"Oliva Nkatha", "Peter Ndungu", "Precious Njeri", "Precious Wanjiku", "Princess Wanjiru",
	"Ramadhan Ismael", "Ronny Ndungu", "Ryan Junior", "Ryan Kariuki", "Ryan Ngunjiri",
	"Sarah Wangari", "Shalon Ndunge", "Shantel Wairimu", "Subrina Waithiegeni", "Samuel Makau",
	"Yakub Huka", "Zuleikha Adan",
}

var femaleFirstNames = map[string]bool{
	"agnes": true, "angela": true, "beatrice": true, "blessed": true, "cindy": true,
	"elizabeth": true, "esther": true, "hope": true, "joan": true, "mary": true,
	"michelle": true, "melody": true, "miriam": true, "noel": true, "oliva": true,
	"precious": true, "princess": true, "sarah": true, "shalon": true, "shantel": true,
	"subrina": true, "zuleikha": true, "wairimu": true, "wangui": true, "njeri": true,
	"nyambura": true, "njoki": true, "muthoni": true, "wangari": true, "ndunge": true,
	"waithiegeni": true,
}

// SampleClassSize is the number of learners in the built-in class list
func SampleClassSize() int {
	return len(sampleClassList)
}

// GuessGender infers gender from a first name. It is only meant for
// generated data.
func GuessGender(name string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(name), " ")
	if femaleFirstNames[strings.ToLower(first)] {
		return domain.GenderFemale
	}
	return domain.GenderMale
}

// SampleRecords generates size learners with plausible scores. Each learner
// gets an aptitude in [40,80) and every subject score is that aptitude
// jittered by ±15, floored and clamped to 0..100. The same seed always
// yields the same records. size <= 0 means the whole class list; names
// repeat with a suffix beyond it.
func SampleRecords(seed int64, size int, subjects []string) []domain.RawRecord {
	if size <= 0 {
		size = len(sampleClassList)
	}
	rng := rand.New(rand.NewSource(seed))

	records := make([]domain.RawRecord, size)
	for i := range records {
		name := sampleClassList[i%len(sampleClassList)]
		if round := i / len(sampleClassList); round > 0 {
			name = fmt.Sprintf("%s %d", name, round+1)
		}

		rec := domain.RawRecord{
			domain.FieldStudentID: fmt.Sprintf("MUGUMO-%d", sampleIDBase+i),
			domain.FieldName:      name,
			domain.FieldGender:    GuessGender(name),
			domain.FieldStream:    SampleStream,
		}

		aptitude := rng.Float64()*40 + 40
		for _, subject := range subjects {
			score := math.Floor(aptitude + (rng.Float64()*30 - 15))
			rec[subject] = math.Max(0, math.Min(100, score))
		}
		records[i] = rec
	}
	return records
}

// SampleColumns is the column order of generated records
func SampleColumns(subjects []string) []string {
	cols := []string{domain.FieldStudentID, domain.FieldName, domain.FieldGender, domain.FieldStream}
	return append(cols, subjects...)
}
