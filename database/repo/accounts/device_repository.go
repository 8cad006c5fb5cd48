package accounts

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/calyx/image-service/database/models"
	"gorm.io/gorm"
)

// DeviceRepository 设备仓库 - 封装刷新令牌设备记录的数据库操作
type DeviceRepository struct {
	db *gorm.DB
}

// NewDeviceRepository 创建新的设备仓库
func NewDeviceRepository(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

func hashRefreshToken(refreshToken string) string {
	hasher := sha256.New()
	hasher.Write([]byte(refreshToken))
	return hex.EncodeToString(hasher.Sum(nil))
}

// CreateLoginDevice 创建设备登录记录
func (r *DeviceRepository) CreateLoginDevice(accountID uint, deviceID string, refreshToken string, refreshTokenExpiry time.Time) error {
	device := &models.Device{
		AccountID:    accountID,
		RefreshToken: hashRefreshToken(refreshToken),
		Expiry:       refreshTokenExpiry,
		DeviceID:     deviceID,
	}
	return r.db.Create(device).Error
}

// GetDeviceByRefreshTokenAndDeviceID 通过刷新令牌和设备ID获取未过期的设备
func (r *DeviceRepository) GetDeviceByRefreshTokenAndDeviceID(refreshToken string, deviceID string) (*models.Device, error) {
	var device models.Device
	err := r.db.Where("refresh_token = ? AND device_id = ? AND expiry > ?",
		hashRefreshToken(refreshToken), deviceID, time.Now()).First(&device).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

// RotateRefreshToken 轮换设备上的刷新令牌
func (r *DeviceRepository) RotateRefreshToken(device *models.Device, newRefreshToken string, newExpiry time.Time) error {
	return r.db.Model(device).Updates(map[string]interface{}{
		"refresh_token": hashRefreshToken(newRefreshToken),
		"expiry":        newExpiry,
	}).Error
}

// DeleteByDeviceID 通过设备ID删除登录记录
func (r *DeviceRepository) DeleteByDeviceID(deviceID string) error {
	return r.db.Where("device_id = ?", deviceID).Delete(&models.Device{}).Error
}

// DeleteExpired 清理已过期的设备记录
func (r *DeviceRepository) DeleteExpired() (int64, error) {
	result := r.db.Where("expiry <= ?", time.Now()).Delete(&models.Device{})
	return result.RowsAffected, result.Error
}
