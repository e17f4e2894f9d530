package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

const defaultTermsAndConditions = "Goods once sold will not be taken back.\n" +
	"Interest @ 18% p.a. will be charged for delayed payment.\n" +
	"Subject to Tamil Nadu Jurisdiction only."

// BankDetails are the seller's bank coordinates printed on invoices.
type BankDetails struct {
	Name      string `mapstructure:"name" json:"name"`
	Branch    string `mapstructure:"branch" json:"branch"`
	AccountNo string `mapstructure:"accountNo" json:"account_no"`
	IFSC      string `mapstructure:"ifsc" json:"ifsc"`
}

// CompanyDefaults is the seller identity used when an organization has no
// company profile of its own. It is built once at startup.
type CompanyDefaults struct {
	Name               string      `mapstructure:"name"`
	Address            string      `mapstructure:"address"`
	State              string      `mapstructure:"state"`
	GSTIN              string      `mapstructure:"gstin"`
	Bank               BankDetails `mapstructure:"bank"`
	SealURL            string      `mapstructure:"sealUrl"`
	SignatureURL       string      `mapstructure:"signatureUrl"`
	UPIQRURL           string      `mapstructure:"upiQrUrl"`
	PaymentTerms       string      `mapstructure:"paymentTerms"`
	TermsAndConditions string      `mapstructure:"termsAndConditions"`
	Currency           string      `mapstructure:"currency"`
}

// DefaultCompanyDefaults returns the built-in seller fallback.
func DefaultCompanyDefaults() CompanyDefaults {
	return CompanyDefaults{
		Name:               "Demo Company",
		Address:            "No. 1, Demo Street",
		State:              "Tamil Nadu",
		GSTIN:              "29ABCDE1234F1Z5",
		PaymentTerms:       "15 Days",
		TermsAndConditions: defaultTermsAndConditions,
		Currency:           "₹",
	}
}

// LoadCompanyDefaults reads company.yml (optional) and GSTBILL_COMPANY_*
// environment overrides on top of DefaultCompanyDefaults.
func LoadCompanyDefaults() (CompanyDefaults, error) {
	return loadCompanyDefaults(viper.New(), "/etc/gstbill", ".")
}

func loadCompanyDefaults(v *viper.Viper, paths ...string) (CompanyDefaults, error) {
	v.SetConfigName("company")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("GSTBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultCompanyDefaults()
	v.SetDefault("company.name", defaults.Name)
	v.SetDefault("company.address", defaults.Address)
	v.SetDefault("company.state", defaults.State)
	v.SetDefault("company.gstin", defaults.GSTIN)
	v.SetDefault("company.bank.name", "")
	v.SetDefault("company.bank.branch", "")
	v.SetDefault("company.bank.accountNo", "")
	v.SetDefault("company.bank.ifsc", "")
	v.SetDefault("company.sealUrl", "")
	v.SetDefault("company.signatureUrl", "")
	v.SetDefault("company.upiQrUrl", "")
	v.SetDefault("company.paymentTerms", defaults.PaymentTerms)
	v.SetDefault("company.termsAndConditions", defaults.TermsAndConditions)
	v.SetDefault("company.currency", defaults.Currency)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return CompanyDefaults{}, err
		}
	}

	var file struct {
		Company CompanyDefaults `mapstructure:"company"`
	}
	if err := v.Unmarshal(&file); err != nil {
		return CompanyDefaults{}, err
	}
	if err := validateCompanyDefaults(file.Company); err != nil {
		return CompanyDefaults{}, err
	}
	return file.Company, nil
}

func validateCompanyDefaults(cfg CompanyDefaults) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return errors.New("company.name cannot be empty")
	}
	if strings.TrimSpace(cfg.State) == "" {
		return errors.New("company.state cannot be empty")
	}
	return nil
}
