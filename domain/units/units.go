// Package units normalizes free-text measurement unit labels to the closed
// list accepted on procurement research items. Labels arrive from
// spreadsheets and form input in every spelling imaginable; everything funnels
// through Normalize before an item is created.
package units

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical is the list of accepted unit labels
var Canonical = []string{
	"ATIVIDADE",
	"BALDE",
	"BANDEJA",
	"BARRA",
	"BISNAGA",
	"BLOCO",
	"BOBINA",
	"BOLSA",
	"BOMBONA",
	"CARGA",
	"CAIXA",
	"CENTÍMETRO",
	"CENTO",
	"CHAPA",
	"CONJUNTO",
	"DÚZIA",
	"EMBALAGEM",
	"ENVELOPE",
	"FARDO",
	"FOLHA",
	"FRASCO",
	"GALÃO",
	"GARRAFA",
	"GRAMA",
	"JOGO",
	"LATA",
	"LITRO",
	"LITRO DILUÍDO",
	"MAÇO",
	"METRO",
	"METRO CÚBICO",
	"METRO LINEAR",
	"METRO QUADRADO",
	"MILHEIRO",
	"MILILITRO",
	"PACOTE",
	"PAR",
	"PEÇA",
	"POTE",
	"REFIL",
	"RECIPIENTE",
	"RESMA",
	"ROLO",
	"SACO",
	"TABLETE",
	"TAMBOR",
	"TONELADA",
	"TUBO",
	"UNIDADE",
	"VIDRO",
	"QUILOGRAMA",
}

// synonyms maps common shorthand to the canonical form
var synonyms = map[string]string{
	"M":             "METRO",
	"M.":            "METRO",
	"METROS":        "METRO",
	"ML":            "MILILITRO",
	"M L":           "MILILITRO",
	"MILILITROS":    "MILILITRO",
	"L":             "LITRO",
	"LITROS":        "LITRO",
	"KG":            "QUILOGRAMA",
	"KILO":          "QUILOGRAMA",
	"QUILO":         "QUILOGRAMA",
	"G":             "GRAMA",
	"GRAMAS":        "GRAMA",
	"M2":            "METRO QUADRADO",
	"M²":            "METRO QUADRADO",
	"M3":            "METRO CÚBICO",
	"M³":            "METRO CÚBICO",
	"M/L":           "METRO LINEAR",
	"METRO LINEAR.": "METRO LINEAR",
	"UN":            "UNIDADE",
	"UND":           "UNIDADE",
	"UNID":          "UNIDADE",
	"UNIDADE(S)":    "UNIDADE",
}

// canonicalByFolded indexes the canonical list by its accent and punctuation
// stripped form, so "DUZIA" and "DÚZIA." land on the same entry
var canonicalByFolded = buildFoldedIndex()

func buildFoldedIndex() map[string]string {
	index := make(map[string]string, len(Canonical))
	for _, unit := range Canonical {
		index[fold(unit)] = unit
	}
	return index
}

// Normalize maps a free-text unit label onto the canonical list. It returns
// the canonical form and true, or "" and false when the label is not
// recognized.
func Normalize(label string) (string, bool) {
	u := strings.ToUpper(strings.TrimSpace(label))
	if u == "" {
		return "", false
	}
	u = strings.Join(strings.Fields(u), " ")

	if canonical, ok := synonyms[u]; ok {
		return canonical, true
	}
	for _, unit := range Canonical {
		if u == unit {
			return unit, true
		}
	}

	if canonical, ok := canonicalByFolded[fold(u)]; ok {
		return canonical, true
	}
	return "", false
}

// fold strips diacritics and punctuation for lenient comparison
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
