package types

// ClinicLink は、リージョンページから発見されたクリニック詳細ページへのリンクです。
// URL はリージョン内で一意です (リージョン間の重複は除去しません)。
type ClinicLink struct {
	Name string // 表示名
	URL  string // 正規化済みのクリニックページURL
}

// ClinicRecord は、クリニック詳細ページから抽出された1行分のデータです。
// 抽出できなかった項目は空文字列のままになります。
type ClinicRecord struct {
	Name     string
	Address  string
	Email    string
	Phone    string
	Services string // ", " 区切りのサービス名一覧
}

// Fields は出力列の順序どおりに値を返します。
func (r ClinicRecord) Fields() []string {
	return []string{r.Name, r.Address, r.Email, r.Phone, r.Services}
}

// RecordFromFields は Fields の逆変換です。不足している列は空文字列として扱います。
func RecordFromFields(fields []string) ClinicRecord {
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	return ClinicRecord{
		Name:     get(0),
		Address:  get(1),
		Email:    get(2),
		Phone:    get(3),
		Services: get(4),
	}
}
