// Package i18n holds the static locale table used by reports and exports.
package i18n

import (
	"time"

	"golang.org/x/text/language"
)

// Supported locale tags, in matcher preference order.
const (
	English    = "en"
	Portuguese = "pt"
	Turkish    = "tr"
)

// Default is used when no supported locale matches.
const Default = English

var (
	supported = []string{English, Portuguese, Turkish}
	matcher   = language.NewMatcher([]language.Tag{language.English, language.Portuguese, language.Turkish})
)

var dateLayouts = map[string]string{
	English:    "1/2/2006",
	Portuguese: "02/01/2006",
	Turkish:    "02.01.2006",
}

var messages = map[string]map[string]string{
	English: {
		"attendanceReport": "Attendance Report",
		"generatedOn":      "Generated on",
		"date":             "Date",
		"student":          "Student",
		"section":          "Section",
		"status":           "Status",
		"present":          "Present",
		"absent":           "Absent",
		"unmarked":         "Not marked",
		"totalStudents":    "Total Students",
		"totalPresent":     "Total Present",
		"totalAbsent":      "Total Absent",
		"attendanceRate":   "Attendance Rate",
		"allSections":      "All Sections",
		"noAttendance":     "No attendance records found",
		"noStudents":       "No students found",
		"noSections":       "No sections found",
		"errorRequired":    "Please fill in all required fields",
	},
	Portuguese: {
		"attendanceReport": "Relatório de Presença",
		"generatedOn":      "Gerado em",
		"date":             "Data",
		"student":          "Aluno",
		"section":          "Seção",
		"status":           "Situação",
		"present":          "Presente",
		"absent":           "Ausente",
		"unmarked":         "Não marcado",
		"totalStudents":    "Total de Alunos",
		"totalPresent":     "Total de Presentes",
		"totalAbsent":      "Total de Ausentes",
		"attendanceRate":   "Taxa de Presença",
		"allSections":      "Todas as Seções",
		"noAttendance":     "Nenhum registro de presença encontrado",
		"noStudents":       "Nenhum aluno encontrado",
		"noSections":       "Nenhuma seção encontrada",
		"errorRequired":    "Preencha todos os campos obrigatórios",
	},
	Turkish: {
		"attendanceReport": "Yoklama Raporu",
		"generatedOn":      "Oluşturulma tarihi",
		"date":             "Tarih",
		"student":          "Öğrenci",
		"section":          "Bölüm",
		"status":           "Durum",
		"present":          "Var",
		"absent":           "Yok",
		"unmarked":         "İşaretlenmedi",
		"totalStudents":    "Toplam Öğrenci",
		"totalPresent":     "Toplam Var",
		"totalAbsent":      "Toplam Yok",
		"attendanceRate":   "Katılım Oranı",
		"allSections":      "Tüm Bölümler",
		"noAttendance":     "Yoklama kaydı bulunamadı",
		"noStudents":       "Öğrenci bulunamadı",
		"noSections":       "Bölüm bulunamadı",
		"errorRequired":    "Lütfen tüm zorunlu alanları doldurun",
	},
}

// Resolve maps any BCP 47 tag (or Accept-Language value) to a supported locale.
func Resolve(tag string) string {
	if tag == "" {
		return Default
	}
	_, idx := language.MatchStrings(matcher, tag)
	if idx < 0 || idx >= len(supported) {
		return Default
	}
	return supported[idx]
}

// Supported reports whether lang is one of the table's locales.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// T translates key for lang, falling back to the key itself.
func T(lang, key string) string {
	if msg, ok := messages[Resolve(lang)][key]; ok {
		return msg
	}
	return key
}

// FormatDate renders an ISO YYYY-MM-DD date in the locale's short format.
// Unparsable input is returned unchanged.
func FormatDate(lang, iso string) string {
	d, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return iso
	}
	return d.Format(dateLayouts[Resolve(lang)])
}
