package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/sightcare/netra/internal/audit/domain"
	"github.com/sightcare/netra/internal/clock"
	"github.com/sightcare/netra/internal/observability/metrics"
	"github.com/sightcare/netra/internal/pledge/domain"
	"github.com/sightcare/netra/pkg/db"
	"github.com/sightcare/netra/pkg/db/pagination"
)

const referenceRetries = 3

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Repo    domain.Repository
	Audit   auditdomain.Service
	Metrics *metrics.Metrics
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	genID   *snowflake.Node
	repo    domain.Repository
	audit   auditdomain.Service
	metrics *metrics.Metrics
}

func NewService(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("pledge.service"),
		clock:   p.Clock,
		genID:   p.GenID,
		repo:    p.Repo,
		audit:   p.Audit,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePledgeRequest) (domain.Pledge, error) {
	if strings.TrimSpace(req.FullName) == "" {
		return domain.Pledge{}, domain.ErrInvalidName
	}
	if !validMobile(req.Mobile) {
		return domain.Pledge{}, domain.ErrInvalidMobile
	}
	if !req.ConsentGiven {
		return domain.Pledge{}, domain.ErrConsentRequired
	}

	now := s.clock.Now()
	pledge := domain.Pledge{
		ID:                 s.genID.Generate(),
		FullName:           strings.TrimSpace(req.FullName),
		Gender:             normalize(req.Gender),
		DateOfBirth:        req.DateOfBirth,
		Age:                req.Age,
		BloodGroup:         strings.TrimSpace(req.BloodGroup),
		Mobile:             strings.TrimSpace(req.Mobile),
		Email:              normalize(req.Email),
		MaritalStatus:      strings.TrimSpace(req.MaritalStatus),
		Occupation:         strings.TrimSpace(req.Occupation),
		IDProofType:        strings.TrimSpace(req.IDProofType),
		IDProofNumber:      strings.TrimSpace(req.IDProofNumber),
		AddressLine1:       strings.TrimSpace(req.AddressLine1),
		AddressLine2:       strings.TrimSpace(req.AddressLine2),
		City:               strings.TrimSpace(req.City),
		District:           normalize(req.District),
		State:              strings.TrimSpace(req.State),
		Pincode:            strings.TrimSpace(req.Pincode),
		Country:            strings.TrimSpace(req.Country),
		PledgePlace:        strings.TrimSpace(req.PledgePlace),
		PledgeDate:         req.PledgeDate,
		OrgansConsented:    strings.TrimSpace(req.OrgansConsented),
		LanguagePreference: normalize(req.LanguagePreference),
		PreferredEyeBank:   strings.TrimSpace(req.PreferredEyeBank),
		Notes:              strings.TrimSpace(req.Notes),
		ConsentGiven:       true,
		Witness1Name:       strings.TrimSpace(req.Witness1Name),
		Witness1Relation:   strings.TrimSpace(req.Witness1Relation),
		Witness1Mobile:     strings.TrimSpace(req.Witness1Mobile),
		Witness2Name:       strings.TrimSpace(req.Witness2Name),
		Witness2Relation:   strings.TrimSpace(req.Witness2Relation),
		Witness2Mobile:     strings.TrimSpace(req.Witness2Mobile),
		Source:             strings.TrimSpace(req.Source),
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if pledge.Country == "" {
		pledge.Country = "India"
	}
	if pledge.OrgansConsented == "" {
		pledge.OrgansConsented = "Eyes"
	}
	if pledge.Source == "" {
		pledge.Source = "web"
	}
	if pledge.Age == nil && pledge.DateOfBirth != nil {
		age := ageAt(*pledge.DateOfBirth, now)
		pledge.Age = &age
	}

	// The reference sequence races with concurrent intakes; the unique index
	// is the arbiter and we retry with a fresh sequence number on collision.
	var lastErr error
	for attempt := 0; attempt < referenceRetries; attempt++ {
		seq, err := s.repo.CountForYear(ctx, s.db, now.Year())
		if err != nil {
			return domain.Pledge{}, err
		}
		pledge.ReferenceNumber = domain.FormatReference(now.Year(), seq+1+int64(attempt))

		if err := s.repo.Insert(ctx, s.db, &pledge); err != nil {
			if db.IsDuplicateKeyErr(err) {
				lastErr = domain.ErrDuplicatePledge
				continue
			}
			return domain.Pledge{}, err
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return domain.Pledge{}, lastErr
	}

	s.metrics.RecordPledgeCreated(ctx, pledge.Source)
	if err := s.audit.Record(ctx, "pledge.created", "pledge", pledge.ID.String(), map[string]any{
		"reference_number": pledge.ReferenceNumber,
		"source":           pledge.Source,
		"state":            pledge.State,
	}); err != nil {
		s.log.Warn("audit write failed", zap.String("action", "pledge.created"), zap.Error(err))
	}

	s.log.Info("pledge created",
		zap.String("pledge_id", pledge.ID.String()),
		zap.String("reference_number", pledge.ReferenceNumber),
		zap.String("source", pledge.Source),
	)
	return pledge, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Pledge, error) {
	pledgeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || pledgeID == 0 {
		return domain.Pledge{}, domain.ErrNotFound
	}
	pledge, err := s.repo.FindByID(ctx, s.db, pledgeID)
	if err != nil {
		return domain.Pledge{}, err
	}
	if pledge == nil {
		return domain.Pledge{}, domain.ErrNotFound
	}
	return *pledge, nil
}

func (s *Service) GetByReference(ctx context.Context, reference string) (domain.Pledge, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return domain.Pledge{}, domain.ErrNotFound
	}
	pledge, err := s.repo.FindByReference(ctx, s.db, reference)
	if err != nil {
		return domain.Pledge{}, err
	}
	if pledge == nil || !pledge.IsActive {
		return domain.Pledge{}, domain.ErrNotFound
	}
	return *pledge, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPledgeRequest) (domain.ListPledgeResponse, error) {
	pageSize := int(req.PageSize)
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		State:       req.State,
		City:        req.City,
		Source:      req.Source,
		Verified:    req.Verified,
		Active:      req.Active,
		Search:      req.Search,
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: pageSize})
	if err != nil {
		return domain.ListPledgeResponse{}, err
	}

	pageInfo, items := pagination.BuildCursorPageInfo(items, pageSize, func(item *domain.Pledge) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})

	pledges := make([]domain.Pledge, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		pledges = append(pledges, *item)
	}

	resp := domain.ListPledgeResponse{Pledges: pledges}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdatePledgeRequest) (domain.Pledge, error) {
	pledge, err := s.GetByID(ctx, req.ID)
	if err != nil {
		return domain.Pledge{}, err
	}
	if !pledge.IsActive {
		return domain.Pledge{}, domain.ErrInactive
	}

	changed := map[string]any{}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) != "" {
		pledge.FullName = strings.TrimSpace(*req.FullName)
		changed["full_name"] = pledge.FullName
	}
	if req.Gender != nil {
		pledge.Gender = normalize(req.Gender)
		changed["gender"] = deref(pledge.Gender)
	}
	if req.Age != nil {
		pledge.Age = req.Age
		changed["age"] = *req.Age
	}
	if req.BloodGroup != nil {
		pledge.BloodGroup = strings.TrimSpace(*req.BloodGroup)
		changed["blood_group"] = pledge.BloodGroup
	}
	if req.Mobile != nil {
		if !validMobile(*req.Mobile) {
			return domain.Pledge{}, domain.ErrInvalidMobile
		}
		pledge.Mobile = strings.TrimSpace(*req.Mobile)
		changed["mobile"] = pledge.Mobile
	}
	if req.Email != nil {
		pledge.Email = normalize(req.Email)
		changed["email"] = deref(pledge.Email)
	}
	if req.AddressLine1 != nil {
		pledge.AddressLine1 = strings.TrimSpace(*req.AddressLine1)
		changed["address_line1"] = pledge.AddressLine1
	}
	if req.AddressLine2 != nil {
		pledge.AddressLine2 = strings.TrimSpace(*req.AddressLine2)
		changed["address_line2"] = pledge.AddressLine2
	}
	if req.City != nil {
		pledge.City = strings.TrimSpace(*req.City)
		changed["city"] = pledge.City
	}
	if req.District != nil {
		pledge.District = normalize(req.District)
		changed["district"] = deref(pledge.District)
	}
	if req.State != nil {
		pledge.State = strings.TrimSpace(*req.State)
		changed["state"] = pledge.State
	}
	if req.Pincode != nil {
		pledge.Pincode = strings.TrimSpace(*req.Pincode)
		changed["pincode"] = pledge.Pincode
	}
	if req.PledgeDate != nil {
		pledge.PledgeDate = req.PledgeDate
		changed["pledge_date"] = req.PledgeDate.Format("2006-01-02")
	}
	if req.OrgansConsented != nil && strings.TrimSpace(*req.OrgansConsented) != "" {
		pledge.OrgansConsented = strings.TrimSpace(*req.OrgansConsented)
		changed["organs_consented"] = pledge.OrgansConsented
	}
	if req.LanguagePreference != nil {
		pledge.LanguagePreference = normalize(req.LanguagePreference)
		changed["language_preference"] = deref(pledge.LanguagePreference)
	}
	if req.PreferredEyeBank != nil {
		pledge.PreferredEyeBank = strings.TrimSpace(*req.PreferredEyeBank)
		changed["preferred_eye_bank"] = pledge.PreferredEyeBank
	}
	if req.Notes != nil {
		pledge.Notes = strings.TrimSpace(*req.Notes)
		changed["notes"] = pledge.Notes
	}

	if len(changed) == 0 {
		return pledge, nil
	}

	pledge.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &pledge); err != nil {
		return domain.Pledge{}, err
	}

	if err := s.audit.Record(ctx, "pledge.updated", "pledge", pledge.ID.String(), map[string]any{
		"reference_number": pledge.ReferenceNumber,
		"fields":           fieldNames(changed),
	}); err != nil {
		s.log.Warn("audit write failed", zap.String("action", "pledge.updated"), zap.Error(err))
	}
	return pledge, nil
}

func (s *Service) Verify(ctx context.Context, id string, verifiedBy string) (domain.Pledge, error) {
	pledge, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Pledge{}, err
	}
	if !pledge.IsActive {
		return domain.Pledge{}, domain.ErrInactive
	}
	if pledge.IsVerified {
		return domain.Pledge{}, domain.ErrAlreadyVerified
	}

	now := s.clock.Now()
	pledge.IsVerified = true
	pledge.VerifiedAt = &now
	pledge.UpdatedAt = now
	if verifiedBy = strings.TrimSpace(verifiedBy); verifiedBy != "" {
		pledge.VerifiedBy = &verifiedBy
	}

	if err := s.repo.Update(ctx, s.db, &pledge); err != nil {
		return domain.Pledge{}, err
	}

	s.metrics.RecordPledgeVerified(ctx)
	if err := s.audit.Record(ctx, "pledge.verified", "pledge", pledge.ID.String(), map[string]any{
		"reference_number": pledge.ReferenceNumber,
		"verified_by":      verifiedBy,
	}); err != nil {
		s.log.Warn("audit write failed", zap.String("action", "pledge.verified"), zap.Error(err))
	}

	s.log.Info("pledge verified",
		zap.String("pledge_id", pledge.ID.String()),
		zap.String("reference_number", pledge.ReferenceNumber),
	)
	return pledge, nil
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	pledge, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !pledge.IsActive {
		return domain.ErrInactive
	}

	pledge.IsActive = false
	pledge.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, &pledge); err != nil {
		return err
	}

	s.metrics.RecordPledgeDeactivated(ctx)
	if err := s.audit.Record(ctx, "pledge.deactivated", "pledge", pledge.ID.String(), map[string]any{
		"reference_number": pledge.ReferenceNumber,
	}); err != nil {
		s.log.Warn("audit write failed", zap.String("action", "pledge.deactivated"), zap.Error(err))
	}
	return nil
}

func (s *Service) Export(ctx context.Context, filter domain.ListFilter) ([]domain.ExportRecord, error) {
	pledges, err := s.repo.ListActive(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	records := make([]domain.ExportRecord, 0, len(pledges))
	for _, p := range pledges {
		if p == nil {
			continue
		}
		age := ""
		if p.Age != nil {
			age = strconv.Itoa(*p.Age)
		}
		records = append(records, domain.ExportRecord{
			ReferenceNumber: p.ReferenceNumber,
			FullName:        p.FullName,
			Gender:          deref(p.Gender),
			Age:             age,
			Mobile:          p.Mobile,
			Email:           deref(p.Email),
			City:            p.City,
			District:        deref(p.District),
			State:           p.State,
			Pincode:         p.Pincode,
			OrgansConsented: p.OrgansConsented,
			Source:          p.Source,
			IsVerified:      p.IsVerified,
			CreatedAt:       p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	if err := s.audit.Record(ctx, "pledge.exported", "pledge", "", map[string]any{
		"record_count": len(records),
	}); err != nil {
		s.log.Warn("audit write failed", zap.String("action", "pledge.exported"), zap.Error(err))
	}
	return records, nil
}

func validMobile(mobile string) bool {
	mobile = strings.TrimSpace(mobile)
	if len(mobile) < 10 || len(mobile) > 15 {
		return false
	}
	for i, r := range mobile {
		if r >= '0' && r <= '9' {
			continue
		}
		if r == '+' && i == 0 {
			continue
		}
		return false
	}
	return true
}

func ageAt(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	anniversary := dob.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}

func normalize(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func fieldNames(changed map[string]any) []string {
	names := make([]string, 0, len(changed))
	for name := range changed {
		names = append(names, name)
	}
	return names
}
