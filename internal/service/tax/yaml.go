package tax

import (
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/tax"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Tables []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name          string        `yaml:"name"`
	EffectiveFrom string        `yaml:"effective_from"`
	UMADaily      string        `yaml:"uma_daily"`
	InfonavitRate string        `yaml:"infonavit_rate"`
	IMSS          yamlIMSS      `yaml:"imss"`
	Brackets      []yamlBracket `yaml:"brackets"`
}

type yamlIMSS struct {
	SicknessMaternity string `yaml:"sickness_maternity"`
	DisabilityLife    string `yaml:"disability_life"`
	Childcare         string `yaml:"childcare"`
	Retirement        string `yaml:"retirement"`
}

type yamlBracket struct {
	From string `yaml:"from"`
	Rate string `yaml:"rate"`
}

// LoadYAML reads tax tables from path and returns a provider over them.
func LoadYAML(path string) (*StaticProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tax tables: %w", err)
	}
	return ParseYAML(raw)
}

// ParseYAML decodes tax tables from raw YAML.
func ParseYAML(raw []byte) (*StaticProvider, error) {
	var file yamlFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode tax tables: %w", err)
	}
	if len(file.Tables) == 0 {
		return nil, fmt.Errorf("decode tax tables: %w", tax.ErrNoTableInEffect)
	}

	tables := make([]tax.Table, 0, len(file.Tables))
	for _, yt := range file.Tables {
		t, err := yt.toTable()
		if err != nil {
			return nil, fmt.Errorf("tax table %q: %w", yt.Name, err)
		}
		tables = append(tables, t)
	}
	return NewStaticProvider(tables...)
}

func (yt yamlTable) toTable() (tax.Table, error) {
	effective, err := time.Parse("2006-01-02", yt.EffectiveFrom)
	if err != nil {
		return tax.Table{}, fmt.Errorf("effective_from: %w", err)
	}

	p := decimalParser{}
	uma := p.parse("uma_daily", yt.UMADaily, "")
	infonavit := p.parse("infonavit_rate", yt.InfonavitRate, "0.05")
	imss := tax.IMSSRates{
		SicknessMaternity: p.parse("imss.sickness_maternity", yt.IMSS.SicknessMaternity, "0"),
		DisabilityLife:    p.parse("imss.disability_life", yt.IMSS.DisabilityLife, "0"),
		Childcare:         p.parse("imss.childcare", yt.IMSS.Childcare, "0"),
		Retirement:        p.parse("imss.retirement", yt.IMSS.Retirement, "0"),
	}

	limits := make([]decimal.Decimal, len(yt.Brackets))
	rates := make([]decimal.Decimal, len(yt.Brackets))
	for i, b := range yt.Brackets {
		limits[i] = p.parse(fmt.Sprintf("brackets[%d].from", i), b.From, "")
		rates[i] = p.parse(fmt.Sprintf("brackets[%d].rate", i), b.Rate, "")
	}
	if p.err != nil {
		return tax.Table{}, p.err
	}

	brackets, err := tax.NewBrackets(limits, rates)
	if err != nil {
		return tax.Table{}, err
	}

	return tax.Table{
		Name:          yt.Name,
		EffectiveFrom: effective,
		Brackets:      brackets,
		IMSS:          imss,
		UMA:           uma,
		InfonavitRate: infonavit,
	}, nil
}

// decimalParser keeps the first parse error so a table can be decoded in one pass.
type decimalParser struct {
	err error
}

func (p *decimalParser) parse(field, value, fallback string) decimal.Decimal {
	if value == "" {
		value = fallback
	}
	d, err := decimal.NewFromString(value)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", field, err)
	}
	return d
}
