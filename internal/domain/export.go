package domain

// ExportColumns 监管 Excel 模板的 32 个列名，顺序固定
// 下游报备系统按列位置识别字段，新增字段只能追加，不得插入或重排
var ExportColumns = []string{
	"Title",
	"Nama (Sesuai Dengan nama Pada Kartu Vaksin)",
	"Nama Ayah",
	"Jenis Identitas",
	"No Identitas",
	"Nama Paspor",
	"No Paspor",
	"Tanggal Dikeluarkan Paspor",
	"Kota Paspor",
	"Tempat Lahir",
	"Tanggal Lahir",
	"Alamat",
	"Provinsi",
	"Kabupaten",
	"Kecamatan",
	"Kelurahan",
	"No. Telepon",
	"No Hp",
	"KewargaNegaraan",
	"Status Pernikahan",
	"Pendidikan",
	"Pekerjaan",
	"Provider Visa",
	"No Visa",
	"Tanggal Berlaku Visa",
	"Tanggal Akhir Visa",
	"Asuransi",
	"No Polis",
	"Tanggal Input Polis",
	"Tanggal Awal Polis",
	"Tanggal Akhir Polis",
	"No BPJS",
}

// ExportRow 按 ExportColumns 的顺序展开一条记录
func ExportRow(p *Pilgrim) []string {
	return []string{
		p.Title,
		p.Nama,
		p.NamaAyah,
		p.JenisIdentitas,
		p.NoIdentitas,
		p.NamaPaspor,
		p.NoPaspor,
		p.TanggalPaspor,
		p.KotaPaspor,
		p.TempatLahir,
		p.TanggalLahir,
		p.Alamat,
		p.Provinsi,
		p.Kabupaten,
		p.Kecamatan,
		p.Kelurahan,
		p.NoTelepon,
		p.NoHP,
		p.Kewarganegaraan,
		p.StatusPernikahan,
		p.Pendidikan,
		p.Pekerjaan,
		p.ProviderVisa,
		p.NoVisa,
		p.TanggalVisa,
		p.TanggalVisaAkhir,
		p.Asuransi,
		p.NoPolis,
		p.TanggalInputPolis,
		p.TanggalAwalPolis,
		p.TanggalAkhirPolis,
		p.NoBPJS,
	}
}
