// Package cleaner 对 OCR 抽取出的原始字段做归一化清洗
// 所有函数都不返回 error：清洗失败一律回退为空串，由 validator 以警告形式暴露
package cleaner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"jamaah-data/internal/domain"
)

// NameBlacklist 姓名黑名单：OCR 常把证件版式上的行政区划/表头词误读进姓名
// 命中即整体丢弃。作为数据维护，调整黑名单不需要改清洗算法
var NameBlacklist = []string{
	"PROVINSI", "KABUPATEN", "KOTA", "NIK",
	"LAKI-LAKI", "PEREMPUAN", "AGAMA", "KAWIN",
	"GOL DARAH", "GOL. DARAH", "PARTAI", "PEMILIHAN",
	"UMUM", "KARTU", "PENDUDUK", "NEGARA",
}

// 姓名最短长度，低于此长度视为噪声
const minNameLen = 3

// 手机号最少位数（归一化后）
const MinPhoneDigits = 10

var (
	nameAllowedRe   = regexp.MustCompile(`[^A-Z\s\-']`)
	multiSpaceRe    = regexp.MustCompile(`\s+`)
	textualMonthRe  = regexp.MustCompile(`(\d{1,2})[\s\-]+([A-Z]{3,})[\s\-]+(\d{4})`)
	digitRunRe      = regexp.MustCompile(`\d+`)
	canonicalDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	nonDigitRe      = regexp.MustCompile(`\D`)
	digitTypoRunRe  = regexp.MustCompile(`[0-9IO|?]+`)
	hasDigitRe      = regexp.MustCompile(`[0-9]`)
)

// 印尼语月份缩写 → 月份，兼容英文写法
// 用有序切片而不是 map，保证 "AGUSTUS" 这类带后缀的写法匹配结果确定
var monthNames = []struct {
	key   string
	month string
}{
	{"JAN", "01"}, {"FEB", "02"}, {"PEB", "02"}, {"MAR", "03"},
	{"APR", "04"}, {"MEI", "05"}, {"MAY", "05"}, {"JUN", "06"},
	{"JUL", "07"}, {"AGU", "08"}, {"AUG", "08"}, {"SEP", "09"},
	{"OKT", "10"}, {"OCT", "10"}, {"NOV", "11"}, {"DES", "12"}, {"DEC", "12"},
}

// 日期分隔符归一化，整串应用（不含字母，不会破坏月份词）
var dateSepReplacer = strings.NewReplacer(":", "-", ".", "-", ",", "-", "_", "-")

// OCR 数字易混淆字符修正表
// 只能在含数字的字符段内应用：对整串应用会把 MEI/OKT/NOV 这类月份词改坏
var digitTypoReplacer = strings.NewReplacer(
	"I", "1", "|", "1",
	"O", "0",
	"?", "7",
)

// repairDigitTypos 修正数字段内被 OCR 误读成字母的字符（I6 -> 16, 199O -> 1990）
// 纯字母段原样保留，月份词不受影响
func repairDigitTypos(s string) string {
	return digitTypoRunRe.ReplaceAllStringFunc(s, func(run string) string {
		if !hasDigitRe.MatchString(run) {
			return run
		}
		return digitTypoReplacer.Replace(run)
	})
}

// CleanName 清洗姓名字段
// 1. 大写并去掉字母/空格/连字符/撇号以外的字符
// 2. 去掉常见 OCR 伪前缀（DN/IDN）和伪后缀（SE）
// 3. 长度不足或命中黑名单返回空串
func CleanName(raw string) string {
	if raw == "" {
		return ""
	}
	name := strings.ToUpper(raw)
	name = nameAllowedRe.ReplaceAllString(name, " ")
	name = multiSpaceRe.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	name = strings.TrimPrefix(name, "DN ")
	name = strings.TrimPrefix(name, "IDN ")
	name = strings.TrimSuffix(name, " SE")
	name = strings.TrimSpace(name)

	if len(name) < minNameLen {
		return ""
	}
	for _, word := range NameBlacklist {
		if strings.Contains(name, word) {
			return ""
		}
	}
	return name
}

// StandardizeDate 把 OCR 日期串归一化为 yyyy-mm-dd
// 支持印尼语月份写法（16 MEI 1990）、数字写法（DD-MM-YYYY 等）和常见数字误读
// 已经是合法 yyyy-mm-dd 的输入原样返回（幂等），解析失败返回空串
func StandardizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	trimmed := strings.TrimSpace(raw)
	if canonicalDateRe.MatchString(trimmed) && isRealDate(trimmed) {
		return trimmed
	}

	text := repairDigitTypos(dateSepReplacer.Replace(strings.ToUpper(trimmed)))

	// 文字月份：16 MEI 1977 / 16-MEI-1977
	if m := textualMonthRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		monthStr, year := m[2], m[3]
		for _, mn := range monthNames {
			if strings.Contains(monthStr, mn.key) {
				return fmt.Sprintf("%s-%s-%02d", year, mn.month, day)
			}
		}
	}

	// 数字写法：取出所有数字段，4 位的当年份，其余按 DD-MM 优先判定
	nums := digitRunRe.FindAllString(text, -1)
	if len(nums) < 3 {
		return ""
	}
	year := ""
	others := make([]string, 0, len(nums))
	for _, n := range nums {
		if year == "" && len(n) == 4 {
			year = n
			continue
		}
		others = append(others, n)
	}
	if year == "" || len(others) < 2 {
		return ""
	}
	yVal, _ := strconv.Atoi(year)
	if yVal < 1900 || yVal > 2040 {
		return ""
	}
	n1, _ := strconv.Atoi(others[0])
	n2, _ := strconv.Atoi(others[1])

	var day, month int
	switch {
	case n2 > 12 && n1 <= 12:
		// MM-DD（少见，多为排版错位）
		month, day = n1, n2
	case n1 > 12 && n2 <= 12:
		// DD-MM（印尼证件的标准写法）
		day, month = n1, n2
	default:
		// 两者都 <=12 时按 DD-MM 处理
		day, month = n1, n2
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%s-%02d-%02d", year, month, day)
}

// NormalizePhone 手机号归一化：去掉分隔符，补印尼国家码 62
// 0812... -> 62812...；+62812... -> 62812...；不足位数的结果原样保留，由 validator 提示
func NormalizePhone(raw string) string {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, "0") {
		return "62" + digits[1:]
	}
	if !strings.HasPrefix(digits, "62") {
		return "62" + digits
	}
	return digits
}

// CleanIdentityNumber 证件号（NIK/护照/签证）只做去空白和大写，格式校验交给 validator
func CleanIdentityNumber(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// CleanEntry 清洗一条抽取记录，返回 false 表示整条没有可用数据应当丢弃
// 签证页往往没有姓名但带有签证号等有效字段，这类记录必须保留
func CleanEntry(p *domain.Pilgrim) bool {
	hasVisaData := p.NoVisa != "" || p.TanggalVisa != "" || p.ProviderVisa != ""
	hasPassportData := p.NoPaspor != "" || p.TanggalPaspor != ""
	hasIDData := p.NoIdentitas != ""
	hasName := strings.TrimSpace(p.Nama) != ""
	hasOtherData := hasVisaData || hasPassportData || hasIDData

	if !hasName && !hasOtherData {
		return false
	}

	if hasName {
		name := CleanName(p.Nama)
		if name == "" && !hasOtherData {
			return false
		}
		// 姓名是垃圾但其它字段有值：清掉姓名保留记录
		p.Nama = name
	}
	if p.NamaPaspor != "" {
		p.NamaPaspor = CleanName(p.NamaPaspor)
	}
	if p.NamaAyah != "" {
		p.NamaAyah = CleanName(p.NamaAyah)
	}

	// 日期：解析失败保留原值，让 validator 报格式警告而不是静默丢数据
	p.TanggalLahir = standardizeKeep(p.TanggalLahir)
	p.TanggalPaspor = standardizeKeep(p.TanggalPaspor)
	p.TanggalVisa = standardizeKeep(p.TanggalVisa)
	p.TanggalVisaAkhir = standardizeKeep(p.TanggalVisaAkhir)

	if p.TempatLahir != "" {
		p.TempatLahir = strings.ToUpper(strings.TrimSpace(p.TempatLahir))
	}
	if p.KotaPaspor != "" {
		p.KotaPaspor = strings.ToUpper(strings.TrimSpace(p.KotaPaspor))
	}

	if p.NoHP != "" {
		p.NoHP = NormalizePhone(p.NoHP)
	}
	if p.NoTelepon != "" {
		p.NoTelepon = NormalizePhone(p.NoTelepon)
	}

	p.NoIdentitas = CleanIdentityNumber(p.NoIdentitas)
	p.NoPaspor = CleanIdentityNumber(p.NoPaspor)
	p.NoVisa = CleanIdentityNumber(p.NoVisa)
	p.NoBPJS = CleanIdentityNumber(p.NoBPJS)
	p.NoPolis = CleanIdentityNumber(p.NoPolis)

	return true
}

func standardizeKeep(raw string) string {
	if raw == "" {
		return ""
	}
	if d := StandardizeDate(raw); d != "" {
		return d
	}
	return raw
}

func isRealDate(s string) bool {
	year, _ := strconv.Atoi(s[0:4])
	month, _ := strconv.Atoi(s[5:7])
	day, _ := strconv.Atoi(s[8:10])
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	return day <= daysInMonth(year, month)
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	}
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 29
	}
	return 28
}
