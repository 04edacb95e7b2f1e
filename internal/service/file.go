package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thepenbook/backend/internal/model"
	"github.com/thepenbook/backend/internal/pkg/cache"
	"github.com/thepenbook/backend/internal/repository"
	"k8s.io/klog/v2"
)

// UploadTokenTTL 上传地址有效期
const UploadTokenTTL = time.Hour

const uploadTokenPrefix = "upload:"

// FileURL 文件的公开访问地址
func FileURL(storageID string) string {
	return "/files/" + storageID
}

// UploadTicket 一次性上传地址
type UploadTicket struct {
	Token     string    `json:"token"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type FileService struct {
	repo     repository.FileRepository
	writings repository.WritingRepository
	settings repository.SettingRepository
	store    cache.Store
	dir      string
	maxBytes int64
	now      func() time.Time
}

func NewFileService(repo repository.FileRepository, writings repository.WritingRepository, settings repository.SettingRepository,
	store cache.Store, dir string, maxBytes int64) *FileService {
	return &FileService{
		repo:     repo,
		writings: writings,
		settings: settings,
		store:    store,
		dir:      dir,
		maxBytes: maxBytes,
		now:      time.Now,
	}
}

// GenerateUploadURL 生成一次性上传令牌
func (s *FileService) GenerateUploadURL(ctx context.Context) (*UploadTicket, error) {
	token := uuid.NewString()
	if err := s.store.Set(ctx, uploadTokenPrefix+token, []byte{1}, UploadTokenTTL); err != nil {
		return nil, fmt.Errorf("save upload token: %w", err)
	}
	return &UploadTicket{
		Token:     token,
		UploadURL: "/api/files/upload/" + token,
		ExpiresAt: s.now().Add(UploadTokenTTL),
	}, nil
}

// Upload 校验通过后才消费令牌并保存图片；内容相同的文件复用已有记录
func (s *FileService) Upload(ctx context.Context, token, fileName string, body io.Reader) (*model.StoredFile, error) {
	key := uploadTokenPrefix + token
	_, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check upload token: %w", err)
	}
	if !ok {
		return nil, ErrUploadTokenInvalid
	}

	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, ErrNotAnImage
	}

	// 被拒绝的请求不消耗令牌，客户端可以换个文件重试
	_, ok, err = s.store.Take(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("consume upload token: %w", err)
	}
	if !ok {
		return nil, ErrUploadTokenInvalid
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	if existing, err := s.repo.GetByHash(ctx, hash); err == nil {
		// 重新上传视为一次新引用，重置孤儿清理的宽限期
		existing.CreatedAt = s.now()
		if err := s.repo.Touch(ctx, existing.ID, existing.CreatedAt); err != nil {
			return nil, fmt.Errorf("refresh file record: %w", err)
		}
		if _, statErr := os.Stat(existing.FilePath); statErr == nil {
			klog.V(6).Infof("上传内容已存在，复用: storageID=%s", existing.StorageID)
			return existing, nil
		}
		// 记录存在但文件丢失，重新写入
		if err := writeFileAtomic(existing.FilePath, data); err != nil {
			return nil, err
		}
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup file hash: %w", err)
	}

	path := filepath.Join(s.dir, hash[:2], hash)
	if err := writeFileAtomic(path, data); err != nil {
		return nil, err
	}
	if fileName != "" {
		fileName = filepath.Base(fileName)
	}
	f := &model.StoredFile{
		StorageID: uuid.NewString(),
		FileHash:  hash,
		FileName:  fileName,
		FilePath:  path,
		MimeType:  mimeType,
		FileSize:  int64(len(data)),
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("save file record: %w", err)
	}
	klog.V(6).Infof("文件已上传: storageID=%s, mime=%s, size=%d", f.StorageID, f.MimeType, f.FileSize)
	return f, nil
}

func (s *FileService) Get(ctx context.Context, storageID string) (*model.StoredFile, error) {
	f, err := s.repo.GetByStorageID(ctx, storageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}

// GetURL 文件不存在时返回 nil
func (s *FileService) GetURL(ctx context.Context, storageID string) (*string, error) {
	if _, err := s.Get(ctx, storageID); err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, nil
		}
		return nil, err
	}
	u := FileURL(storageID)
	return &u, nil
}

// SweepOrphans 删除超过 grace 且未被封面或 Logo 引用的文件
func (s *FileService) SweepOrphans(ctx context.Context, grace time.Duration) (int, error) {
	referenced := map[string]bool{}
	covers, err := s.writings.CoverImageIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list cover ids: %w", err)
	}
	for _, id := range covers {
		referenced[id] = true
	}
	logo, err := s.settings.Get(ctx, model.SettingLogoStorageID)
	if err == nil && logo.Value != "" {
		referenced[logo.Value] = true
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return 0, fmt.Errorf("get logo setting: %w", err)
	}

	candidates, err := s.repo.ListCreatedBefore(ctx, s.now().Add(-grace))
	if err != nil {
		return 0, fmt.Errorf("list files: %w", err)
	}
	removed := 0
	for _, f := range candidates {
		if referenced[f.StorageID] {
			continue
		}
		if err := os.Remove(f.FilePath); err != nil && !os.IsNotExist(err) {
			klog.Errorf("删除文件失败: path=%s, err=%v", f.FilePath, err)
			continue
		}
		if err := s.repo.Delete(ctx, f.ID); err != nil {
			klog.Errorf("删除文件记录失败: storageID=%s, err=%v", f.StorageID, err)
			continue
		}
		removed++
	}
	return removed, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("move upload: %w", err)
	}
	return nil
}
