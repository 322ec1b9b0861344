// Package refdata holds the administrative region tables the order form
// offers: wilayas by numeric code and the baladiyat of each wilaya. Display
// names are the Arabic ones the store uses everywhere downstream.
package refdata

import "sort"

// Wilaya is one administrative region option.
type Wilaya struct {
	ID     int
	NameAr string
}

var wilayas = []Wilaya{
	{1, "أدرار"},
	{2, "الشلف"},
	{5, "باتنة"},
	{6, "بجاية"},
	{9, "البليدة"},
	{13, "تلمسان"},
	{15, "تيزي وزو"},
	{16, "الجزائر"},
	{19, "سطيف"},
	{23, "عنابة"},
	{25, "قسنطينة"},
	{30, "ورقلة"},
	{31, "وهران"},
	{35, "بومرداس"},
	{42, "تيبازة"},
	{47, "غرداية"},
}

var baladiyat = map[int][]string{
	1:  {"أدرار", "رقان", "تيميمون"},
	2:  {"الشلف", "تنس", "بوقادير"},
	5:  {"باتنة", "بريكة", "عين التوتة", "مروانة"},
	6:  {"بجاية", "أقبو", "خراطة", "صدوق"},
	9:  {"البليدة", "بوفاريك", "الأربعاء", "موزاية", "العفرون"},
	13: {"تلمسان", "مغنية", "الرمشي", "ندرومة"},
	15: {"تيزي وزو", "عزازقة", "ذراع بن خدة", "تيقزيرت"},
	16: {"الجزائر الوسطى", "باب الوادي", "بئر مراد رايس", "الحراش", "حسين داي", "الدار البيضاء", "برج الكيفان"},
	19: {"سطيف", "العلمة", "عين ولمان", "بوقاعة"},
	23: {"عنابة", "البوني", "الحجار", "سرايدي"},
	25: {"قسنطينة", "الخروب", "حامة بوزيان", "عين سمارة"},
	30: {"ورقلة", "حاسي مسعود", "تقرت"},
	31: {"وهران", "السانية", "بئر الجير", "أرزيو", "عين الترك"},
	35: {"بومرداس", "بودواو", "برج منايل", "دلس"},
	42: {"تيبازة", "القليعة", "حجوط", "شرشال"},
	47: {"غرداية", "متليلي", "بريان", "القرارة"},
}

// Wilayas returns the selectable wilayas sorted by numeric code.
func Wilayas() []Wilaya {
	out := make([]Wilaya, len(wilayas))
	copy(out, wilayas)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// WilayaByID resolves a wilaya code to its display name.
func WilayaByID(id int) (Wilaya, bool) {
	for _, w := range wilayas {
		if w.ID == id {
			return w, true
		}
	}
	return Wilaya{}, false
}

// BaladiyatOf returns the baladiya names of a wilaya, unique and sorted.
// Empty slice when the wilaya is unknown.
func BaladiyatOf(wilayaID int) []string {
	names := baladiyat[wilayaID]
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
