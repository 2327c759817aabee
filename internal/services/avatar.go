package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"os"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"gorm.io/gorm"

	"github.com/MarcusNeufeldt/never-cook-alone/internal/logger"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/repos"
	"github.com/MarcusNeufeldt/never-cook-alone/internal/types"
)

type AvatarService interface {
	CreateAndUploadUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error
	CreateAndUploadUserAvatarFromImage(ctx context.Context, tx *gorm.DB, user *types.User, raw []byte) error
	GenerateUserAvatar(user *types.User) (bytes.Buffer, error)
}

type avatarService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	bucketService BucketService

	bgColors []color.NRGBA
	fontFace font.Face
}

// Default background palette for generated initials avatars.
var avatarPalette = []color.NRGBA{
	{R: 0xE0, G: 0x7A, B: 0x5F, A: 0xFF},
	{R: 0x3D, G: 0x5A, B: 0x80, A: 0xFF},
	{R: 0x81, G: 0xB2, B: 0x9A, A: 0xFF},
	{R: 0xF2, G: 0xCC, B: 0x8F, A: 0xFF},
	{R: 0x6D, G: 0x59, B: 0x7A, A: 0xFF},
	{R: 0xB5, G: 0x65, B: 0x76, A: 0xFF},
	{R: 0x35, G: 0x7B, B: 0x7C, A: 0xFF},
	{R: 0xC4, G: 0x5B, B: 0xAA, A: 0xFF},
}

func NewAvatarService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, bucketService BucketService) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	fontPath := os.Getenv("AVATAR_FONT")
	if strings.TrimSpace(fontPath) == "" {
		return nil, fmt.Errorf("env var AVATAR_FONT is empty")
	}
	serviceLog.Info("Loading avatar font", "font", fontPath)

	face, err := loadFontFace(fontPath, 206)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		bucketService: bucketService,
		bgColors:      avatarPalette,
		fontFace:      face,
	}, nil
}

func (as *avatarService) CreateAndUploadUserAvatar(ctx context.Context, tx *gorm.DB, user *types.User) error {
	buf, err := as.GenerateUserAvatar(user)
	if err != nil {
		return err
	}
	return as.storeAvatar(ctx, tx, user, buf.Bytes())
}

func (as *avatarService) CreateAndUploadUserAvatarFromImage(ctx context.Context, tx *gorm.DB, user *types.User, raw []byte) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("user required")
	}
	processed, err := processUploadedAvatar(raw, 512)
	if err != nil {
		return err
	}
	return as.storeAvatar(ctx, tx, user, processed.Bytes())
}

// storeAvatar uploads under a versioned key, points the user row at it, then
// best-effort deletes the previous object. The old object is only removed
// after the new one exists.
func (as *avatarService) storeAvatar(ctx context.Context, tx *gorm.DB, user *types.User, png []byte) error {
	oldKey := strings.TrimSpace(user.AvatarBucketKey)
	newKey := fmt.Sprintf("user-avatars/%s/%d.png", user.ID.String(), time.Now().UnixNano())

	if err := as.bucketService.UploadFile(ctx, newKey, bytes.NewReader(png), "image/png"); err != nil {
		return fmt.Errorf("failed to upload user avatar: %w", err)
	}

	user.AvatarBucketKey = newKey
	user.AvatarURL = as.bucketService.GetPublicURL(newKey)
	if err := as.userRepo.UpdateAvatar(ctx, tx, user.ID, user.AvatarBucketKey, user.AvatarURL); err != nil {
		return err
	}

	if oldKey != "" && oldKey != newKey {
		if err := as.bucketService.DeleteFile(ctx, oldKey); err != nil {
			as.log.Warn("Failed to delete old avatar (ignored)", "oldKey", oldKey, "error", err)
		}
	}
	return nil
}

func (as *avatarService) GenerateUserAvatar(user *types.User) (bytes.Buffer, error) {
	const size = 512

	dc := gg.NewContext(size, size)

	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	base := as.pickColor(user.ID)
	dc.SetColor(base)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	initials := computeInitials(user.FirstName, user.LastName)

	dc.SetFontFace(as.fontFace)
	tw, th := dc.MeasureString(initials)
	cx, cy := float64(size)/2, float64(size)/2

	dc.SetColor(color.White)
	dc.DrawString(initials, cx-(tw/2)+5, cy+(th/2)-10)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

// pickColor is deterministic per user so regenerated avatars keep their color.
func (as *avatarService) pickColor(id uuid.UUID) color.NRGBA {
	h := fnv.New32a()
	h.Write(id[:])
	return as.bgColors[int(h.Sum32())%len(as.bgColors)]
}

func processUploadedAvatar(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	// Center-crop to square
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	// Resize to NxN
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	// Circle clip with gg
	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}

	return out, nil
}

func computeInitials(first, last string) string {
	fInit := "?"
	if len(first) > 0 {
		fInit = strings.ToUpper(first[:1])
	}
	lInit := "?"
	if len(last) > 0 {
		lInit = strings.ToUpper(last[:1])
	}
	return fInit + lInit
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}
