package timeblock

// Day is a weekday index, 0 is monday and 6 is sunday.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayGlyphs = map[rune]Day{
	'一': Monday,
	'二': Tuesday,
	'三': Wednesday,
	'四': Thursday,
	'五': Friday,
	'六': Saturday,
	'日': Sunday,
}

// DisplayOrder is the column order weekdays appear in on catalog pages,
// it starts on sunday unlike Day.
var DisplayOrder = []rune{'日', '一', '二', '三', '四', '五', '六'}

func DayFromGlyph(glyph rune) (Day, bool) {
	day, ok := dayGlyphs[glyph]
	return day, ok
}

func (d Day) Glyph() rune {
	for glyph, day := range dayGlyphs {
		if day == d {
			return glyph
		}
	}
	return '?'
}

// Periods is the ordered period scale of a teaching day, "Z" is the lunch
// period and the letters are evening periods.
var Periods = []byte{'1', '2', '3', '4', 'Z', '5', '6', '7', '8', '9', 'A', 'B', 'C', 'D'}

var periodIndex = func() map[byte]int {
	out := make(map[byte]int, len(Periods))
	for i, p := range Periods {
		out[p] = i
	}
	return out
}()

// PeriodIndex returns the position of a period code on the period scale.
func PeriodIndex(code byte) (int, bool) {
	idx, ok := periodIndex[code]
	return idx, ok
}

func PeriodCode(idx int) byte {
	if idx < 0 || idx >= len(Periods) {
		return '?'
	}
	return Periods[idx]
}
