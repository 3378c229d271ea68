// Package validator 对清洗后的字段做格式校验，产出非阻塞的字段级警告
// 校验永不报错：返回空切片表示通过，警告只用于前端标注，不拦截保存和导出
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"jamaah-data/internal/domain"
)

// Warning 字段级校验警告
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	digitRe    = regexp.MustCompile(`\D`)
	passportRe = regexp.MustCompile(`^[A-Z]+\d{6,7}$`)
)

// NIK 固定 16 位数字
const nikLength = 16

// 签证号最短长度
const minVisaLen = 8

// MinPhoneDigits 手机号最少位数
const MinPhoneDigits = 10

// ValidateNIK 校验印尼身份证号：恰好 16 位，全部为数字
// 只在记录的证件类型为 KTP 时调用，空值同样告警
func ValidateNIK(nik string) []Warning {
	if nik == "" {
		return []Warning{{Field: "no_identitas", Message: "NIK tidak boleh kosong"}}
	}
	digits := digitRe.ReplaceAllString(nik, "")
	if len(digits) != len(nik) {
		return []Warning{{
			Field:   "no_identitas",
			Message: fmt.Sprintf("NIK mengandung karakter non-digit: '%s'", nik),
		}}
	}
	if len(digits) != nikLength {
		return []Warning{{
			Field:   "no_identitas",
			Message: fmt.Sprintf("NIK harus %d digit (ditemukan %d digit)", nikLength, len(digits)),
		}}
	}
	return nil
}

// ValidatePassport 校验护照号：至少一个大写字母开头 + 6-7 位数字
func ValidatePassport(passport string) []Warning {
	if passport == "" {
		return nil
	}
	if !passportRe.MatchString(strings.ToUpper(strings.TrimSpace(passport))) {
		return []Warning{{
			Field:   "no_paspor",
			Message: fmt.Sprintf("No Paspor format tidak valid: '%s'", passport),
		}}
	}
	return nil
}

// ValidateVisa 校验签证号（字母数字混合，至少 8 位）
func ValidateVisa(visa string) []Warning {
	if visa == "" {
		return nil
	}
	if len(strings.TrimSpace(visa)) < minVisaLen {
		return []Warning{{
			Field:   "no_visa",
			Message: fmt.Sprintf("No Visa terlalu pendek: '%s'", visa),
		}}
	}
	return nil
}

// ValidateDate 校验日期是否为规范 yyyy-mm-dd 且是真实存在的日历日
// cleaner 解析失败会保留原值，在这里以警告形式暴露
func ValidateDate(field, label, value string) []Warning {
	if value == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", strings.TrimSpace(value)); err != nil {
		return []Warning{{
			Field:   field,
			Message: fmt.Sprintf("%s: format tanggal tidak valid (gunakan YYYY-MM-DD)", label),
		}}
	}
	return nil
}

// ValidatePhone 校验归一化后的手机号位数
func ValidatePhone(field, phone string, minDigits int) []Warning {
	if phone == "" {
		return nil
	}
	digits := digitRe.ReplaceAllString(phone, "")
	if len(digits) < minDigits {
		return []Warning{{
			Field:   field,
			Message: fmt.Sprintf("Nomor telepon terlalu pendek (minimal %d digit)", minDigits),
		}}
	}
	return nil
}

// ValidateCitizenship 国籍只允许 WNI/WNA
func ValidateCitizenship(value string) []Warning {
	if value == "" {
		return nil
	}
	switch strings.ToUpper(value) {
	case "WNI", "WNA":
		return nil
	}
	return []Warning{{Field: "kewarganegaraan", Message: "Kewarganegaraan harus WNI atau WNA"}}
}

// 需要逐个校验格式的日期列
var dateFields = []struct {
	field string
	label string
}{
	{"tanggal_lahir", "Tanggal Lahir"},
	{"tanggal_paspor", "Tanggal Paspor"},
	{"tanggal_visa", "Tanggal Visa"},
	{"tanggal_visa_akhir", "Tanggal Visa Akhir"},
	{"tanggal_input_polis", "Tanggal Input Polis"},
	{"tanggal_awal_polis", "Tanggal Awal Polis"},
	{"tanggal_akhir_polis", "Tanggal Akhir Polis"},
}

// ValidateRecord 校验一条合并后的记录，返回全部字段警告
func ValidateRecord(p *domain.Pilgrim) []Warning {
	var warnings []Warning

	// NIK 只在证件类型为 KTP（或合并记录）时校验
	switch strings.ToUpper(p.JenisIdentitas) {
	case "KTP", "MERGED":
		warnings = append(warnings, ValidateNIK(p.NoIdentitas)...)
	}

	warnings = append(warnings, ValidatePassport(p.NoPaspor)...)
	warnings = append(warnings, ValidateVisa(p.NoVisa)...)

	dates := map[string]string{
		"tanggal_lahir":       p.TanggalLahir,
		"tanggal_paspor":      p.TanggalPaspor,
		"tanggal_visa":        p.TanggalVisa,
		"tanggal_visa_akhir":  p.TanggalVisaAkhir,
		"tanggal_input_polis": p.TanggalInputPolis,
		"tanggal_awal_polis":  p.TanggalAwalPolis,
		"tanggal_akhir_polis": p.TanggalAkhirPolis,
	}
	for _, df := range dateFields {
		warnings = append(warnings, ValidateDate(df.field, df.label, dates[df.field])...)
	}

	warnings = append(warnings, ValidatePhone("no_hp", p.NoHP, MinPhoneDigits)...)
	warnings = append(warnings, ValidatePhone("no_telepon", p.NoTelepon, MinPhoneDigits)...)
	warnings = append(warnings, ValidateCitizenship(p.Kewarganegaraan)...)

	if strings.TrimSpace(p.Nama) == "" {
		warnings = append(warnings, Warning{Field: "nama", Message: "Nama tidak boleh kosong"})
	}
	return warnings
}
