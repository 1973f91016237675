package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateRandomID 生成指定长度的随机十六进制字符串 ID，length 必须为正偶数.
func GenerateRandomID(length int) (string, error) {
	if length <= 0 || length%2 != 0 {
		return "", fmt.Errorf("random id length must be a positive even number, got %d", length)
	}
	buf := make([]byte, length/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GenRequestID 生成 32 位十六进制请求 ID；随机源不可用时退回到雪花 ID.
func GenRequestID() string {
	id, err := GenerateRandomID(32)
	if err != nil {
		return fmt.Sprintf("%032x", GenID())
	}
	return id
}
