package notes

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

var slugRegex = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// cyrillicTranslit is the common russian/ukrainian web transliteration
// (й -> j, х -> h, щ -> sch, hard and soft signs dropped). It runs before
// slug.Make, whose own unidecode table would give "i", "kh", "shch" instead.
var cyrillicTranslit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch", 'ъ': "",
	'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
	'є': "ye", 'і': "i", 'ї': "yi", 'ґ': "g",

	'А': "A", 'Б': "B", 'В': "V", 'Г': "G", 'Д': "D", 'Е': "E", 'Ё': "Yo",
	'Ж': "Zh", 'З': "Z", 'И': "I", 'Й': "J", 'К': "K", 'Л': "L", 'М': "M",
	'Н': "N", 'О': "O", 'П': "P", 'Р': "R", 'С': "S", 'Т': "T", 'У': "U",
	'Ф': "F", 'Х': "H", 'Ц': "Ts", 'Ч': "Ch", 'Ш': "Sh", 'Щ': "Sch", 'Ъ': "",
	'Ы': "Y", 'Ь': "", 'Э': "E", 'Ю': "Yu", 'Я': "Ya",
	'Є': "Ye", 'І': "I", 'Ї': "Yi", 'Ґ': "G",
}

// Slugify transliterates the title to latin and makes it URL safe,
// e.g. "Заголовок" -> "zagolovok". The result is at most MaxSlugLength long.
func Slugify(title string) string {
	s := slug.Make(slug.SubstituteRune(title, cyrillicTranslit))
	if len(s) > MaxSlugLength {
		s = s[:MaxSlugLength]
	}
	return strings.Trim(s, "-_")
}

func IsValidSlug(s string) bool {
	return len(s) <= MaxSlugLength && slugRegex.MatchString(s)
}
