package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	if c.General == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "general",
			Message:   "configuration must contain 'general' section",
		})
		return validationErrors
	}

	if err := validate.Struct(c.General); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "general", "")...)
	}
	validationErrors = append(validationErrors, c.validateEndpointSubset()...)
	validationErrors = append(validationErrors, c.validateStaticLists()...)

	if c.Server != nil {
		if err := validate.Struct(c.Server); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "server", "")...)
		}
	}
	if c.Verify != nil {
		if err := validate.Struct(c.Verify); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "verify", "")...)
		}
	}
	if c.Firewall != nil {
		validationErrors = append(validationErrors, c.validateFirewall()...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

func (c *Config) validateEndpointSubset() ValidationErrors {
	var validationErrors ValidationErrors
	seen := make(map[string]bool)
	for _, label := range c.General.Endpoints {
		if seen[label] {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: "general.endpoints",
				Message:   fmt.Sprintf("duplicate endpoint: %s", label),
			})
		}
		seen[label] = true
	}
	return validationErrors
}

func (c *Config) validateStaticLists() ValidationErrors {
	var validationErrors ValidationErrors
	seenNames := make(map[string]bool)

	for i, list := range c.StaticLists {
		itemName := list.Name
		if itemName == "" {
			itemName = fmt.Sprintf("static_list[%d]", i)
		}

		if err := validate.Struct(list); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("static_list.%d", i), itemName)...)
		}

		if list.Name != "" && seenNames[list.Name] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "name",
				Message:   fmt.Sprintf("duplicate static list name: %s", list.Name),
			})
		}
		seenNames[list.Name] = true
	}

	return validationErrors
}

func (c *Config) validateFirewall() ValidationErrors {
	var validationErrors ValidationErrors
	fw := c.Firewall

	if err := validate.Struct(fw); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "firewall", "")...)
	}

	if fw.IPSetV4 == "" && fw.IPSetV6 == "" {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "firewall",
			Message:   "must specify ipset_v4, ipset_v6 or both",
		})
	}
	if fw.IPSetV4 != "" && fw.IPSetV4 == fw.IPSetV6 {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "firewall.ipset_v6",
			Message:   "must differ from ipset_v4",
		})
	}

	for j, rule := range fw.IPTablesRules {
		if rule.Chain == "" {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: fmt.Sprintf("firewall.iptables_rule.%d.chain", j),
				Message:   "chain cannot be empty",
			})
		}
		if rule.Table == "" {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: fmt.Sprintf("firewall.iptables_rule.%d.table", j),
				Message:   "table cannot be empty",
			})
		}
		if len(rule.Rule) == 0 {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: fmt.Sprintf("firewall.iptables_rule.%d.rule", j),
				Message:   "rule cannot be empty",
			})
		}
	}

	return validationErrors
}

// convertValidatorErrors converts go-playground/validator errors to our ValidationError format
func convertValidatorErrors(err error, fieldPrefix string, itemName string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				if fieldPrefix != "" {
					fieldPath = fieldPrefix + "." + e.Field()
				} else {
					fieldPath = e.Field()
				}
			}

			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}
