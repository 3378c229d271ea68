// Package matcher 判断两条抽取记录是否属于同一个人
// 匹配只看姓名相似度：这是整条流水线最敏感的策略参数，阈值必须显式传入
package matcher

import (
	"regexp"
	"strings"

	"jamaah-data/internal/domain"
)

// DefaultThreshold 姓名相似度阈值，达到即判定为同一人
const DefaultThreshold = 0.80

// 前缀匹配要求的最短姓名长度（防止 "ALI" 误配 "ALICE"）
const minPrefixLen = 4

var spaceRe = regexp.MustCompile(`\s+`)

// Matcher 同人判定器
type Matcher struct {
	threshold float64
}

// New 创建 Matcher；threshold <= 0 时使用默认阈值
func New(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// SamePerson 判定两条记录是否同一人
// 取各自最可信的姓名（KTP 姓名优先，其次护照姓名）比较：
// 完全一致或前缀包含（如 "REBI" 与 "REBI SARIP"）直接判同，否则看相似度
func (m *Matcher) SamePerson(a, b *domain.Pilgrim) bool {
	return m.SameName(BestName(a), BestName(b))
}

// SameName 纯姓名版本的同人判定
func (m *Matcher) SameName(n1, n2 string) bool {
	n1 = normalize(n1)
	n2 = normalize(n2)
	if n1 == "" || n2 == "" {
		return false
	}
	if n1 == n2 {
		return true
	}
	if len(n1) >= minPrefixLen && len(n2) >= minPrefixLen {
		if strings.HasPrefix(n1, n2) || strings.HasPrefix(n2, n1) {
			return true
		}
	}
	return Ratio(n1, n2) >= m.threshold
}

// BestName 取记录里最可信的姓名：KTP 姓名优先，其次护照姓名
func BestName(p *domain.Pilgrim) string {
	if p.Nama != "" {
		return p.Nama
	}
	return p.NamaPaspor
}

// Ratio 序列相似度，算法与 Python difflib.SequenceMatcher.ratio 一致：
// 2*M/T，M 为所有最长公共子串块的字符总数，T 为两串长度之和
func Ratio(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	matched := matchLen(a, 0, len(a), b, 0, len(b))
	return 2 * float64(matched) / float64(total)
}

// matchLen 递归统计匹配块：先找最长公共子串，再对其左右两侧分治
func matchLen(a string, alo, ahi int, b string, blo, bhi int) int {
	besti, bestj, bestSize := alo, blo, 0
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] == b[j] {
				k := j2len[j-1] + 1
				next[j] = k
				if k > bestSize {
					besti, bestj, bestSize = i-k+1, j-k+1, k
				}
			}
		}
		j2len = next
	}
	if bestSize == 0 {
		return 0
	}
	return bestSize +
		matchLen(a, alo, besti, b, blo, bestj) +
		matchLen(a, besti+bestSize, ahi, b, bestj+bestSize, bhi)
}

func normalize(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(strings.ToUpper(s), " "))
}
