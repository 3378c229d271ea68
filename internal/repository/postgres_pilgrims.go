package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"jamaah-data/internal/domain"
)

// PostgresPilgrimsRepository 朝觐人员仓储实现
type PostgresPilgrimsRepository struct {
	db *sql.DB
}

// NewPostgresPilgrimsRepository 创建人员仓储
func NewPostgresPilgrimsRepository(db *sql.DB) *PostgresPilgrimsRepository {
	return &PostgresPilgrimsRepository{db: db}
}

// 确保实现了接口
var _ PilgrimsRepository = (*PostgresPilgrimsRepository)(nil)

// pilgrimColumns 与 domain.Pilgrim 的 32 个导出字段 + 运营字段一致
const pilgrimColumns = `
	pilgrim_id::text, group_id::text,
	title, nama, nama_ayah, jenis_identitas, no_identitas,
	nama_paspor, no_paspor, tanggal_paspor, kota_paspor,
	tempat_lahir, tanggal_lahir,
	alamat, provinsi, kabupaten, kecamatan, kelurahan,
	no_telepon, no_hp,
	kewarganegaraan, status_pernikahan, pendidikan, pekerjaan,
	provider_visa, no_visa, tanggal_visa, tanggal_visa_akhir,
	asuransi, no_polis, tanggal_input_polis, tanggal_awal_polis, tanggal_akhir_polis,
	no_bpjs,
	COALESCE(family_id, '') as family_id,
	COALESCE(room_id::text, '') as room_id`

// SaveRoster 批量写入名册，同一事务内逐条插入
func (r *PostgresPilgrimsRepository) SaveRoster(ctx context.Context, groupID string, roster []*domain.Pilgrim) error {
	if groupID == "" {
		return fmt.Errorf("group_id is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	const insertSQL = `
		INSERT INTO pilgrims (
			pilgrim_id, group_id,
			title, nama, nama_ayah, jenis_identitas, no_identitas,
			nama_paspor, no_paspor, tanggal_paspor, kota_paspor,
			tempat_lahir, tanggal_lahir,
			alamat, provinsi, kabupaten, kecamatan, kelurahan,
			no_telepon, no_hp,
			kewarganegaraan, status_pernikahan, pendidikan, pekerjaan,
			provider_visa, no_visa, tanggal_visa, tanggal_visa_akhir,
			asuransi, no_polis, tanggal_input_polis, tanggal_awal_polis, tanggal_akhir_polis,
			no_bpjs, family_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34, $35
		)`

	for _, p := range roster {
		if p.PilgrimID == "" {
			p.PilgrimID = uuid.NewString()
		}
		p.GroupID = groupID
		if _, err := tx.ExecContext(ctx, insertSQL,
			p.PilgrimID, groupID,
			p.Title, p.Nama, p.NamaAyah, p.JenisIdentitas, p.NoIdentitas,
			p.NamaPaspor, p.NoPaspor, p.TanggalPaspor, p.KotaPaspor,
			p.TempatLahir, p.TanggalLahir,
			p.Alamat, p.Provinsi, p.Kabupaten, p.Kecamatan, p.Kelurahan,
			p.NoTelepon, p.NoHP,
			p.Kewarganegaraan, p.StatusPernikahan, p.Pendidikan, p.Pekerjaan,
			p.ProviderVisa, p.NoVisa, p.TanggalVisa, p.TanggalVisaAkhir,
			p.Asuransi, p.NoPolis, p.TanggalInputPolis, p.TanggalAwalPolis, p.TanggalAkhirPolis,
			p.NoBPJS, p.FamilyID,
		); err != nil {
			return fmt.Errorf("failed to insert pilgrim: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit roster: %w", err)
	}
	return nil
}

// ListByGroup 按团组列出成员，created 顺序即名册顺序
func (r *PostgresPilgrimsRepository) ListByGroup(ctx context.Context, groupID string) ([]*domain.Pilgrim, error) {
	if groupID == "" {
		return nil, fmt.Errorf("group_id is required")
	}

	query := `SELECT ` + pilgrimColumns + `
		FROM pilgrims
		WHERE group_id = $1
		ORDER BY created_at, pilgrim_id`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pilgrims: %w", err)
	}
	defer rows.Close()

	var result []*domain.Pilgrim
	for rows.Next() {
		p, err := scanPilgrim(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// GetPilgrim 按主键取单个成员
func (r *PostgresPilgrimsRepository) GetPilgrim(ctx context.Context, groupID, pilgrimID string) (*domain.Pilgrim, error) {
	if groupID == "" || pilgrimID == "" {
		return nil, fmt.Errorf("group_id and pilgrim_id are required")
	}

	query := `SELECT ` + pilgrimColumns + `
		FROM pilgrims
		WHERE group_id = $1 AND pilgrim_id = $2`

	row := r.db.QueryRowContext(ctx, query, groupID, pilgrimID)
	p, err := scanPilgrim(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("pilgrim not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get pilgrim: %w", err)
	}
	return p, nil
}

// UpdateRoomAssignment 更新分房指向，空串写 NULL
func (r *PostgresPilgrimsRepository) UpdateRoomAssignment(ctx context.Context, pilgrimID, roomID string) error {
	var value any
	if roomID != "" {
		value = roomID
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE pilgrims SET room_id = $1 WHERE pilgrim_id = $2`,
		value, pilgrimID,
	)
	if err != nil {
		return fmt.Errorf("failed to update room assignment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("pilgrim not found: %s", pilgrimID)
	}
	return nil
}

// UpdateFamilyID 维护家庭分组标识
func (r *PostgresPilgrimsRepository) UpdateFamilyID(ctx context.Context, pilgrimID, familyID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE pilgrims SET family_id = $1 WHERE pilgrim_id = $2`,
		familyID, pilgrimID,
	)
	if err != nil {
		return fmt.Errorf("failed to update family_id: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("pilgrim not found: %s", pilgrimID)
	}
	return nil
}

// CountMembers 团组总人数和已分房人数
func (r *PostgresPilgrimsRepository) CountMembers(ctx context.Context, groupID string) (int, int, error) {
	var total, assigned int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(room_id) FROM pilgrims WHERE group_id = $1`,
		groupID,
	).Scan(&total, &assigned)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count members: %w", err)
	}
	return total, assigned, nil
}

// scanner 兼容 *sql.Row 和 *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanPilgrim(s scanner) (*domain.Pilgrim, error) {
	var p domain.Pilgrim
	err := s.Scan(
		&p.PilgrimID, &p.GroupID,
		&p.Title, &p.Nama, &p.NamaAyah, &p.JenisIdentitas, &p.NoIdentitas,
		&p.NamaPaspor, &p.NoPaspor, &p.TanggalPaspor, &p.KotaPaspor,
		&p.TempatLahir, &p.TanggalLahir,
		&p.Alamat, &p.Provinsi, &p.Kabupaten, &p.Kecamatan, &p.Kelurahan,
		&p.NoTelepon, &p.NoHP,
		&p.Kewarganegaraan, &p.StatusPernikahan, &p.Pendidikan, &p.Pekerjaan,
		&p.ProviderVisa, &p.NoVisa, &p.TanggalVisa, &p.TanggalVisaAkhir,
		&p.Asuransi, &p.NoPolis, &p.TanggalInputPolis, &p.TanggalAwalPolis, &p.TanggalAkhirPolis,
		&p.NoBPJS, &p.FamilyID, &p.RoomID,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
