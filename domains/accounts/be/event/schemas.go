package event

// JSON Schemas for the three recognized envelope shapes. Validation rejects
// structurally broken envelopes before field extraction; semantic requirements
// (e.g. which tags must be present) stay in the normalizer where the error
// taxonomy lives.

const provisionProductSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["source", "detail"],
  "properties": {
    "source": {"const": "aws.servicecatalog"},
    "detail": {
      "type": "object",
      "required": ["eventName", "requestParameters", "responseElements"],
      "properties": {
        "eventName": {"const": "ProvisionProduct"},
        "requestParameters": {
          "type": "object",
          "properties": {
            "tags": {
              "type": "array",
              "items": {
                "type": "object",
                "required": ["key", "value"],
                "properties": {
                  "key": {"type": "string"},
                  "value": {"type": "string"}
                }
              }
            },
            "provisioningParameters": {
              "type": "array",
              "items": {
                "type": "object",
                "required": ["key", "value"],
                "properties": {
                  "key": {"type": "string"},
                  "value": {"type": "string"}
                }
              }
            }
          }
        },
        "responseElements": {
          "type": "object",
          "required": ["recordDetail"],
          "properties": {
            "recordDetail": {
              "type": "object",
              "required": ["status"],
              "properties": {
                "status": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

const createManagedAccountSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["source", "detail"],
  "properties": {
    "source": {"const": "aws.controltower"},
    "detail": {
      "type": "object",
      "required": ["eventName", "serviceEventDetails"],
      "properties": {
        "eventName": {"const": "CreateManagedAccount"},
        "serviceEventDetails": {
          "type": "object",
          "required": ["createManagedAccountStatus"],
          "properties": {
            "createManagedAccountStatus": {
              "type": "object",
              "required": ["state", "account"],
              "properties": {
                "state": {"type": "string"},
                "account": {
                  "type": "object",
                  "required": ["accountId", "accountName"],
                  "properties": {
                    "accountId": {"type": "string"},
                    "accountName": {"type": "string"}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

const stackInstanceStatusSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["source", "detail-type", "detail"],
  "properties": {
    "source": {"const": "aws.cloudformation"},
    "detail-type": {"const": "CloudFormation StackSet StackInstance Status Change"},
    "detail": {
      "type": "object",
      "required": ["stack-id", "status-details"],
      "properties": {
        "stack-id": {"type": "string"},
        "status-details": {
          "type": "object",
          "properties": {
            "detailed-status": {"type": "string"},
            "status": {"type": "string"}
          }
        }
      }
    }
  }
}`
