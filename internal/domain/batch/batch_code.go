package batch

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateBatchCode 生成批次号
// 格式:BATCH + 时间戳(秒) + 6位随机数,示例:BATCH1699248000123456
func GenerateBatchCode() string {
	timestamp := time.Now().Unix()
	random := rand.Intn(1000000)
	return fmt.Sprintf("BATCH%d%06d", timestamp, random)
}
