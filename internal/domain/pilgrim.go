package domain

// DocumentType 证件类型（OCR 识别的来源证件）
type DocumentType string

const (
	DocKTP     DocumentType = "KTP"     // 印尼身份证
	DocPaspor  DocumentType = "PASPOR"  // 护照
	DocVisa    DocumentType = "VISA"    // 签证
	DocUnknown DocumentType = "UNKNOWN" // 无法识别
)

// Gender 性别（由 title 推导，用于分房）
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Pilgrim 朝觐人员领域模型（对应 pilgrims 表）
// 32 个导出字段与监管 Excel 模板一一对应，列顺序固定，不得重排
type Pilgrim struct {
	// 主键
	PilgrimID string `db:"pilgrim_id" json:"pilgrim_id"` // UUID, PRIMARY KEY
	GroupID   string `db:"group_id" json:"group_id"`   // UUID, NOT NULL（所属团组）

	// --- 导出列 1-11：身份信息 ---
	Title          string `db:"title" json:"title"`           // Col 1: 称谓（Mr/Mrs/Ms/Tuan/Nyonya/Nona）
	Nama           string `db:"nama" json:"nama"`            // Col 2: 姓名
	NamaAyah       string `db:"nama_ayah" json:"nama_ayah"`       // Col 3: 父亲姓名
	JenisIdentitas string `db:"jenis_identitas" json:"jenis_identitas"` // Col 4: 证件类型（KTP/PASPOR）
	NoIdentitas    string `db:"no_identitas" json:"no_identitas"`    // Col 5: 证件号（NIK 16 位数字）
	NamaPaspor     string `db:"nama_paspor" json:"nama_paspor"`     // Col 6: 护照姓名
	NoPaspor       string `db:"no_paspor" json:"no_paspor"`       // Col 7: 护照号
	TanggalPaspor  string `db:"tanggal_paspor" json:"tanggal_paspor"`  // Col 8: 护照签发日期（yyyy-mm-dd）
	KotaPaspor     string `db:"kota_paspor" json:"kota_paspor"`     // Col 9: 护照签发城市
	TempatLahir    string `db:"tempat_lahir" json:"tempat_lahir"`    // Col 10: 出生地
	TanggalLahir   string `db:"tanggal_lahir" json:"tanggal_lahir"`   // Col 11: 出生日期（yyyy-mm-dd）

	// --- 导出列 12-18：住址与联系方式 ---
	Alamat    string `db:"alamat" json:"alamat"`     // Col 12: 地址
	Provinsi  string `db:"provinsi" json:"provinsi"`   // Col 13: 省
	Kabupaten string `db:"kabupaten" json:"kabupaten"`  // Col 14: 县
	Kecamatan string `db:"kecamatan" json:"kecamatan"`  // Col 15: 区
	Kelurahan string `db:"kelurahan" json:"kelurahan"`  // Col 16: 村
	NoTelepon string `db:"no_telepon" json:"no_telepon"` // Col 17: 固定电话
	NoHP      string `db:"no_hp" json:"no_hp"`      // Col 18: 手机号（62 开头）

	// --- 导出列 19-22：个人状况 ---
	Kewarganegaraan  string `db:"kewarganegaraan" json:"kewarganegaraan"`   // Col 19: 国籍（WNI/WNA）
	StatusPernikahan string `db:"status_pernikahan" json:"status_pernikahan"` // Col 20: 婚姻状况
	Pendidikan       string `db:"pendidikan" json:"pendidikan"`        // Col 21: 学历
	Pekerjaan        string `db:"pekerjaan" json:"pekerjaan"`         // Col 22: 职业

	// --- 导出列 23-26：签证信息 ---
	ProviderVisa     string `db:"provider_visa" json:"provider_visa"`      // Col 23: 签证服务商
	NoVisa           string `db:"no_visa" json:"no_visa"`            // Col 24: 签证号
	TanggalVisa      string `db:"tanggal_visa" json:"tanggal_visa"`       // Col 25: 签证生效日期（yyyy-mm-dd）
	TanggalVisaAkhir string `db:"tanggal_visa_akhir" json:"tanggal_visa_akhir"` // Col 26: 签证到期日期（yyyy-mm-dd）

	// --- 导出列 27-32：保险信息 ---
	Asuransi          string `db:"asuransi" json:"asuransi"`            // Col 27: 保险公司
	NoPolis           string `db:"no_polis" json:"no_polis"`            // Col 28: 保单号
	TanggalInputPolis string `db:"tanggal_input_polis" json:"tanggal_input_polis"` // Col 29: 保单录入日期（yyyy-mm-dd）
	TanggalAwalPolis  string `db:"tanggal_awal_polis" json:"tanggal_awal_polis"`  // Col 30: 保单起始日期（yyyy-mm-dd）
	TanggalAkhirPolis string `db:"tanggal_akhir_polis" json:"tanggal_akhir_polis"` // Col 31: 保单结束日期（yyyy-mm-dd）
	NoBPJS            string `db:"no_bpjs" json:"no_bpjs"`             // Col 32: 社保号（BPJS）

	// --- 运营字段（内部使用，不导出到 Excel）---
	FamilyID string `db:"family_id" json:"family_id"` // VARCHAR(100)，家庭分组标识，空串表示散客
	RoomID   string `db:"room_id" json:"room_id"`   // UUID, nullable（已分房时指向 rooms.room_id）

	// SourceDocs 本记录由哪些证件合并而来（仅识别流水线填写，不落库）
	SourceDocs []DocumentType `db:"-" json:"source_docs,omitempty"`
}

// Gender 由 title 推导性别（分房用）
func (p *Pilgrim) Gender() Gender {
	if p.Title == "" {
		return GenderUnknown
	}
	switch normalizeTitle(p.Title) {
	case "mr", "tuan":
		return GenderMale
	case "mrs", "ms", "nyonya", "nona":
		return GenderFemale
	}
	return GenderUnknown
}

// HasSourceDoc 判断记录是否包含指定证件来源
func (p *Pilgrim) HasSourceDoc(t DocumentType) bool {
	for _, s := range p.SourceDocs {
		if s == t {
			return true
		}
	}
	return false
}

// AddSourceDoc 记录证件来源（去重）
func (p *Pilgrim) AddSourceDoc(t DocumentType) {
	if t == "" || t == DocUnknown || p.HasSourceDoc(t) {
		return
	}
	p.SourceDocs = append(p.SourceDocs, t)
}

func normalizeTitle(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c == '.' || c == ' ' {
			continue
		}
		b = append(b, c)
	}
	return string(b)
}
