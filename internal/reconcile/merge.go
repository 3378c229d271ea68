package reconcile

import (
	"strings"

	"jamaah-data/internal/domain"
)

// 来源优先序：同名字段可能被多种证件填写且 OCR 后互相矛盾，
// 用固定的来源优先级消解冲突，而不是按到达顺序覆盖。
// 优先序是领域策略而不是算法，集中定义在这张表里便于调整
var (
	ktpFirst    = []domain.DocumentType{domain.DocKTP, domain.DocPaspor, domain.DocVisa, domain.DocUnknown}
	pasporFirst = []domain.DocumentType{domain.DocPaspor, domain.DocKTP, domain.DocVisa, domain.DocUnknown}
	visaFirst   = []domain.DocumentType{domain.DocVisa, domain.DocPaspor, domain.DocKTP, domain.DocUnknown}
)

// fieldRule 单个导出字段的合并规则
type fieldRule struct {
	name   string
	prefer []domain.DocumentType
	get    func(*domain.Pilgrim) string
	set    func(*domain.Pilgrim, string)
}

// mergeFields 32 个导出字段的合并规则表，与 domain.ExportColumns 一一对应
// 身份/住址/出生字段以 KTP 为准，护照字段以护照为准，签证字段以签证为准
var mergeFields = []fieldRule{
	{"title", ktpFirst, func(p *domain.Pilgrim) string { return p.Title }, func(p *domain.Pilgrim, v string) { p.Title = v }},
	{"nama", ktpFirst, func(p *domain.Pilgrim) string { return p.Nama }, func(p *domain.Pilgrim, v string) { p.Nama = v }},
	{"nama_ayah", ktpFirst, func(p *domain.Pilgrim) string { return p.NamaAyah }, func(p *domain.Pilgrim, v string) { p.NamaAyah = v }},
	{"jenis_identitas", ktpFirst, func(p *domain.Pilgrim) string { return p.JenisIdentitas }, func(p *domain.Pilgrim, v string) { p.JenisIdentitas = v }},
	{"no_identitas", ktpFirst, func(p *domain.Pilgrim) string { return p.NoIdentitas }, func(p *domain.Pilgrim, v string) { p.NoIdentitas = v }},
	{"nama_paspor", pasporFirst, func(p *domain.Pilgrim) string { return p.NamaPaspor }, func(p *domain.Pilgrim, v string) { p.NamaPaspor = v }},
	{"no_paspor", pasporFirst, func(p *domain.Pilgrim) string { return p.NoPaspor }, func(p *domain.Pilgrim, v string) { p.NoPaspor = v }},
	{"tanggal_paspor", pasporFirst, func(p *domain.Pilgrim) string { return p.TanggalPaspor }, func(p *domain.Pilgrim, v string) { p.TanggalPaspor = v }},
	{"kota_paspor", pasporFirst, func(p *domain.Pilgrim) string { return p.KotaPaspor }, func(p *domain.Pilgrim, v string) { p.KotaPaspor = v }},
	{"tempat_lahir", ktpFirst, func(p *domain.Pilgrim) string { return p.TempatLahir }, func(p *domain.Pilgrim, v string) { p.TempatLahir = v }},
	{"tanggal_lahir", ktpFirst, func(p *domain.Pilgrim) string { return p.TanggalLahir }, func(p *domain.Pilgrim, v string) { p.TanggalLahir = v }},
	{"alamat", ktpFirst, func(p *domain.Pilgrim) string { return p.Alamat }, func(p *domain.Pilgrim, v string) { p.Alamat = v }},
	{"provinsi", ktpFirst, func(p *domain.Pilgrim) string { return p.Provinsi }, func(p *domain.Pilgrim, v string) { p.Provinsi = v }},
	{"kabupaten", ktpFirst, func(p *domain.Pilgrim) string { return p.Kabupaten }, func(p *domain.Pilgrim, v string) { p.Kabupaten = v }},
	{"kecamatan", ktpFirst, func(p *domain.Pilgrim) string { return p.Kecamatan }, func(p *domain.Pilgrim, v string) { p.Kecamatan = v }},
	{"kelurahan", ktpFirst, func(p *domain.Pilgrim) string { return p.Kelurahan }, func(p *domain.Pilgrim, v string) { p.Kelurahan = v }},
	{"no_telepon", ktpFirst, func(p *domain.Pilgrim) string { return p.NoTelepon }, func(p *domain.Pilgrim, v string) { p.NoTelepon = v }},
	{"no_hp", ktpFirst, func(p *domain.Pilgrim) string { return p.NoHP }, func(p *domain.Pilgrim, v string) { p.NoHP = v }},
	{"kewarganegaraan", ktpFirst, func(p *domain.Pilgrim) string { return p.Kewarganegaraan }, func(p *domain.Pilgrim, v string) { p.Kewarganegaraan = v }},
	{"status_pernikahan", ktpFirst, func(p *domain.Pilgrim) string { return p.StatusPernikahan }, func(p *domain.Pilgrim, v string) { p.StatusPernikahan = v }},
	{"pendidikan", ktpFirst, func(p *domain.Pilgrim) string { return p.Pendidikan }, func(p *domain.Pilgrim, v string) { p.Pendidikan = v }},
	{"pekerjaan", ktpFirst, func(p *domain.Pilgrim) string { return p.Pekerjaan }, func(p *domain.Pilgrim, v string) { p.Pekerjaan = v }},
	{"provider_visa", visaFirst, func(p *domain.Pilgrim) string { return p.ProviderVisa }, func(p *domain.Pilgrim, v string) { p.ProviderVisa = v }},
	{"no_visa", visaFirst, func(p *domain.Pilgrim) string { return p.NoVisa }, func(p *domain.Pilgrim, v string) { p.NoVisa = v }},
	{"tanggal_visa", visaFirst, func(p *domain.Pilgrim) string { return p.TanggalVisa }, func(p *domain.Pilgrim, v string) { p.TanggalVisa = v }},
	{"tanggal_visa_akhir", visaFirst, func(p *domain.Pilgrim) string { return p.TanggalVisaAkhir }, func(p *domain.Pilgrim, v string) { p.TanggalVisaAkhir = v }},
	{"asuransi", ktpFirst, func(p *domain.Pilgrim) string { return p.Asuransi }, func(p *domain.Pilgrim, v string) { p.Asuransi = v }},
	{"no_polis", ktpFirst, func(p *domain.Pilgrim) string { return p.NoPolis }, func(p *domain.Pilgrim, v string) { p.NoPolis = v }},
	{"tanggal_input_polis", ktpFirst, func(p *domain.Pilgrim) string { return p.TanggalInputPolis }, func(p *domain.Pilgrim, v string) { p.TanggalInputPolis = v }},
	{"tanggal_awal_polis", ktpFirst, func(p *domain.Pilgrim) string { return p.TanggalAwalPolis }, func(p *domain.Pilgrim, v string) { p.TanggalAwalPolis = v }},
	{"tanggal_akhir_polis", ktpFirst, func(p *domain.Pilgrim) string { return p.TanggalAkhirPolis }, func(p *domain.Pilgrim, v string) { p.TanggalAkhirPolis = v }},
	{"no_bpjs", ktpFirst, func(p *domain.Pilgrim) string { return p.NoBPJS }, func(p *domain.Pilgrim, v string) { p.NoBPJS = v }},
}

// mergeCluster 把聚类成员合并为一条记录
// 逐字段按来源优先序取第一个非空值，同来源多条时按加入顺序取先到的，
// 因此同一组成员无论以什么顺序进入聚类，合并结果都一致
func mergeCluster(c *cluster) *domain.Pilgrim {
	merged := &domain.Pilgrim{}
	for _, rule := range mergeFields {
		value := ""
		for _, docType := range rule.prefer {
			for _, m := range c.members {
				if m.docType != docType {
					continue
				}
				if v := rule.get(m.entry); v != "" {
					value = v
					break
				}
			}
			if value != "" {
				break
			}
		}
		rule.set(merged, value)
	}

	for _, m := range c.members {
		for _, t := range m.entry.SourceDocs {
			merged.AddSourceDoc(t)
		}
	}

	applyIdentityConsistency(merged)
	return merged
}

// applyIdentityConsistency 证件类型与证件号的一致性修正：
// 证件类型为护照/签证时 no_identitas 必须等于护照号；
// 只有护照号而证件号为空时，把记录归为护照证件
func applyIdentityConsistency(p *domain.Pilgrim) {
	switch strings.ToUpper(p.JenisIdentitas) {
	case "PASPOR", "PASSPORT", "VISA":
		if p.NoPaspor != "" {
			p.NoIdentitas = p.NoPaspor
		}
	default:
		if p.NoPaspor != "" && p.NoIdentitas == "" {
			p.NoIdentitas = p.NoPaspor
			p.JenisIdentitas = "Paspor"
		}
	}
}
